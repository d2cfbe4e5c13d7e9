package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile/dental-api/internal/config"
	"github.com/brightsmile/dental-api/internal/email"
	"github.com/brightsmile/dental-api/internal/handler"
	appointmentHandler "github.com/brightsmile/dental-api/internal/handler/appointment"
	authHandler "github.com/brightsmile/dental-api/internal/handler/auth"
	patientHandler "github.com/brightsmile/dental-api/internal/handler/patient"
	practitionerHandler "github.com/brightsmile/dental-api/internal/handler/practitioner"
	"github.com/brightsmile/dental-api/internal/middleware"
	"github.com/brightsmile/dental-api/internal/repository/postgres"
	"github.com/brightsmile/dental-api/internal/router"
	appointmentService "github.com/brightsmile/dental-api/internal/service/appointment"
	authService "github.com/brightsmile/dental-api/internal/service/auth"
	notificationService "github.com/brightsmile/dental-api/internal/service/notification"
	"github.com/brightsmile/dental-api/pkg/auth"
	redisBroker "github.com/brightsmile/dental-api/pkg/messaging/redis"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisBroker.NewBroker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	catalogRepo := postgres.NewSlotCatalogRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	practitionerRepo := postgres.NewPractitionerRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	adminRepo := postgres.NewAdminRepository(db)

	// Services
	emailSender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	notifier := notificationService.NewService(broker, emailSender)
	resolver := appointmentService.NewResolver(catalogRepo, appointmentRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, outboxRepo, resolver, notifier, broker)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(adminRepo, jwtSvc)

	// Handlers
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, resolver)
	patientH := patientHandler.NewHandler(patientRepo)
	practitionerH := practitionerHandler.NewHandler(practitionerRepo, catalogRepo)
	authH := authHandler.NewHandler(authSvc)
	healthH := handler.NewHealthHandler(db, broker)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		appointmentH,
		patientH,
		practitionerH,
		authH,
		healthH,
		router.Config{
			RateLimitRPS:   cfg.API.RateLimitRPS,
			RateLimitBurst: cfg.API.RateLimitBurst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsPrefix:  "dental_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
