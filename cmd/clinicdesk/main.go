package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	v1 "github.com/clinicdesk/clinicdesk/internal/handler/v1"
	"github.com/clinicdesk/clinicdesk/internal/repository"
	"github.com/clinicdesk/clinicdesk/internal/service"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/clinicdesk/clinicdesk/pkg/database"
	"github.com/clinicdesk/clinicdesk/pkg/logger"
	"github.com/clinicdesk/clinicdesk/pkg/mailer"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
	"github.com/clinicdesk/clinicdesk/pkg/tracer"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting clinicdesk",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	collector := metrics.NewCollector("clinicdesk")
	if sqlDB, err := db.DB(); err == nil {
		collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
	}

	hours, err := businessHours(cfg.Scheduling)
	if err != nil {
		return fmt.Errorf("parsing business hours: %w", err)
	}

	apptRepo := repository.NewAppointmentRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditSvc := service.NewAuditService(auditRepo, log).WithMetrics(collector)
	defer auditSvc.Shutdown()

	mail := mailer.NewSMTPMailer(cfg.Email, log)
	notifier := service.NewNotificationService(apptRepo, doctorRepo, patientRepo, mail, log).WithMetrics(collector)
	defer notifier.Shutdown()

	jwtManager := auth.NewJWTManager(cfg.JWT)

	apptSvc := service.NewAppointmentService(apptRepo, notifier, auditSvc, hours, log).WithMetrics(collector)
	doctorSvc := service.NewDoctorService(doctorRepo, auditSvc, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, log)

	router := v1.NewRouter(v1.RouterDeps{
		AppointmentHandler: v1.NewAppointmentHandler(apptSvc),
		DoctorHandler:      v1.NewDoctorHandler(doctorSvc),
		PatientHandler:     v1.NewPatientHandler(patientSvc),
		AuthHandler:        v1.NewAuthHandler(authSvc),
		JWTManager:         jwtManager,
		Collector:          collector,
		Logger:             log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func businessHours(cfg config.SchedulingConfig) (appointment.BusinessHours, error) {
	start, err := appointment.ParseClock(cfg.BusinessHoursStart)
	if err != nil {
		return appointment.BusinessHours{}, fmt.Errorf("invalid start %q: %w", cfg.BusinessHoursStart, err)
	}
	end, err := appointment.ParseClock(cfg.BusinessHoursEnd)
	if err != nil {
		return appointment.BusinessHours{}, fmt.Errorf("invalid end %q: %w", cfg.BusinessHoursEnd, err)
	}
	return appointment.BusinessHours{
		Start: start,
		End:   end,
		Step:  int(cfg.SlotInterval.Minutes()),
	}, nil
}
