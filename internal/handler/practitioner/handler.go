package practitioner

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
	"github.com/brightsmile/dental-api/pkg/httputil"
)

type Handler struct {
	repo     repository.PractitionerRepository
	catalog  repository.SlotCatalogRepository
	validate *validator.Validate
}

func NewHandler(repo repository.PractitionerRepository, catalog repository.SlotCatalogRepository) *Handler {
	return &Handler{
		repo:     repo,
		catalog:  catalog,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/practitioners", h.ListPractitioners)
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.PUT("/practitioners/:name/slots", h.UpsertSlotCatalog)
}

func (h *Handler) ListPractitioners(c *gin.Context) {
	practitioners, err := h.repo.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "failed to list practitioners")
		return
	}

	httputil.OK(c, practitioners)
}

// UpsertSlotCatalog replaces the candidate slot list for a practitioner
// and date. Times must already be ordered chronologically; the resolver
// preserves catalog order as-is.
func (h *Handler) UpsertSlotCatalog(c *gin.Context) {
	name := c.Param("name")

	var req model.UpsertSlotCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := model.ParseDate(req.Date); err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid date")
		return
	}

	now := time.Now()
	entry := &model.SlotCatalogEntry{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PractitionerName: name,
		Date:             req.Date,
		Times:            req.Times,
	}

	if err := h.catalog.Upsert(c.Request.Context(), entry); err != nil {
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "failed to update slot catalog")
		return
	}

	httputil.OK(c, entry)
}
