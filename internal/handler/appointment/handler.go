package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
	"github.com/brightsmile/dental-api/internal/service/appointment"
	"github.com/brightsmile/dental-api/pkg/httputil"
)

type Handler struct {
	service  *appointment.Service
	resolver *appointment.Resolver
	validate *validator.Validate
}

func NewHandler(service *appointment.Service, resolver *appointment.Resolver) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes exposes the endpoints the booking flow uses
// without an admin identity.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("/request", h.RequestAppointment)
	}
}

// RegisterAdminRoutes exposes the back-office surface.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.ScheduleAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/assign", h.AssignPractitioner)
		appointments.POST("/:id/confirm", h.Confirm)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/complete", h.Complete)
		appointments.POST("/:id/no-show", h.MarkNoShow)
	}
}

func (h *Handler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	practitioner := c.Query("practitioner")
	if date == "" || practitioner == "" {
		httputil.Error(c, http.StatusBadRequest, "date and practitioner are required")
		return
	}

	slots, err := h.resolver.ResolveAvailableSlots(c.Request.Context(), date, practitioner)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.OK(c, slots)
}

func (h *Handler) RequestAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	apt, err := h.service.RequestAppointment(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Created(c, apt)
}

func (h *Handler) ScheduleAppointment(c *gin.Context) {
	var req model.ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	apt, err := h.service.Schedule(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Created(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.OK(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{
		PractitionerName: c.Query("practitioner"),
		FromDate:         c.Query("from_date"),
		ToDate:           c.Query("to_date"),
	}

	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			httputil.Error(c, http.StatusBadRequest, "invalid patient ID")
			return
		}
		filters.PatientID = patientID
	}

	if status := c.Query("status"); status != "" {
		s := model.AppointmentStatus(status)
		if !s.Valid() {
			httputil.Error(c, http.StatusBadRequest, "unknown status")
			return
		}
		filters.Status = s
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.OK(c, appointments)
}

func (h *Handler) AssignPractitioner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	var req model.AssignPractitionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.AssignPractitioner(c.Request.Context(), id, req.PractitionerName); err != nil {
		h.respondError(c, err)
		return
	}

	httputil.OK(c, nil)
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	if err := op(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	httputil.OK(c, nil)
}

// respondError maps scheduling errors to non-technical client messages.
// Raw persistence errors go to the error-handling middleware's log only.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appointment.ErrInvalidDate):
		httputil.Error(c, http.StatusBadRequest, "please choose a valid date that is not in the past")
	case errors.Is(err, appointment.ErrSlotConflict):
		httputil.Error(c, http.StatusConflict, "that time slot is no longer available")
	case errors.Is(err, appointment.ErrPractitionerRequired):
		httputil.Error(c, http.StatusUnprocessableEntity, "a practitioner must be assigned first")
	case errors.Is(err, appointment.ErrInvalidTransition):
		httputil.Error(c, http.StatusConflict, "this appointment cannot be changed that way")
	case errors.Is(err, repository.ErrNotFound):
		httputil.Error(c, http.StatusNotFound, "appointment not found")
	default:
		_ = c.Error(err)
		httputil.Error(c, http.StatusInternalServerError, "something went wrong, please try again")
	}
}
