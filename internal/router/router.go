package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightsmile/dental-api/internal/handler"
	appointmentHandler "github.com/brightsmile/dental-api/internal/handler/appointment"
	authHandler "github.com/brightsmile/dental-api/internal/handler/auth"
	patientHandler "github.com/brightsmile/dental-api/internal/handler/patient"
	practitionerHandler "github.com/brightsmile/dental-api/internal/handler/practitioner"
	"github.com/brightsmile/dental-api/internal/middleware"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	appointmentH  *appointmentHandler.Handler
	patientH      *patientHandler.Handler
	practitionerH *practitionerHandler.Handler
	authH         *authHandler.Handler
	healthH       *handler.HealthHandler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	appointmentH *appointmentHandler.Handler,
	patientH *patientHandler.Handler,
	practitionerH *practitionerHandler.Handler,
	authH *authHandler.Handler,
	healthH *handler.HealthHandler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		appointmentH:  appointmentH,
		patientH:      patientH,
		practitionerH: practitionerH,
		authH:         authH,
		healthH:       healthH,
		metrics:       newRouterMetrics(cfg.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.RequestTimeout}),
		middleware.CORS(cfg.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)

	// Public booking surface
	r.appointmentH.RegisterPublicRoutes(api)
	r.practitionerH.RegisterPublicRoutes(api)

	// Back-office surface
	admin := api.Group("")
	admin.Use(r.auth.RequireAdmin())
	r.appointmentH.RegisterAdminRoutes(admin)
	r.practitionerH.RegisterAdminRoutes(admin)
	r.patientH.RegisterRoutes(admin)
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		labels := []string{c.Request.Method, path, statusLabel(status)}
		r.metrics.requestTotal.WithLabelValues(labels...).Inc()
		r.metrics.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
