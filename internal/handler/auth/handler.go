package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/brightsmile/dental-api/internal/model"
	authService "github.com/brightsmile/dental-api/internal/service/auth"
	"github.com/brightsmile/dental-api/pkg/httputil"
)

type Handler struct {
	service  *authService.Service
	validate *validator.Validate
}

func NewHandler(service *authService.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, authService.ErrInvalidCredentials) {
		httputil.Error(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "login failed")
		return
	}

	httputil.OK(c, resp)
}
