package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Pinger reports broker liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     *sqlx.DB
	broker Pinger
}

func NewHealthHandler(db *sqlx.DB, broker Pinger) *HealthHandler {
	return &HealthHandler{db: db, broker: broker}
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "broker": "ok"}
	status := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.broker != nil {
		if err := h.broker.Ping(ctx); err != nil {
			checks["broker"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, checks)
}
