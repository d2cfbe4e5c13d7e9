package patient

import (
	"errors"
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
	repo     repository.PatientRepository
	validate *validator.Validate
}

func NewHandler(repo repository.PatientRepository) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: model.PatientStatusActive,
	}

	if err := h.repo.Create(c.Request.Context(), patient); err != nil {
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "failed to register patient")
		return
	}

	httputil.Created(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid patient ID")
		return
	}

	patient, err := h.repo.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		httputil.Error(c, http.StatusNotFound, "patient not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "failed to load patient")
		return
	}

	httputil.OK(c, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	filters := &model.PatientFilters{
		SearchTerm: c.Query("search"),
		Status:     model.PatientStatus(c.Query("status")),
	}

	patients, err := h.repo.List(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "failed to list patients")
		return
	}

	httputil.OK(c, patients)
}
