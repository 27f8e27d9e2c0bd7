package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/uatas-cs/complaint-service/internal/config"
	"github.com/uatas-cs/complaint-service/internal/database"
	"github.com/uatas-cs/complaint-service/internal/handler"
	"github.com/uatas-cs/complaint-service/internal/kafka"
	"github.com/uatas-cs/complaint-service/internal/logger"
	"github.com/uatas-cs/complaint-service/internal/router"
	"github.com/uatas-cs/complaint-service/internal/scheduler"
	"github.com/uatas-cs/complaint-service/internal/service"
	"github.com/uatas-cs/complaint-service/internal/storage"
	"go.uber.org/zap"
)

const jwtTTL = 24 * time.Hour

// API wires the HTTP server, the background jobs and the event producer.
type API struct {
	cfg      *config.Config
	log      *zap.Logger
	httpSrv  *http.Server
	jobs     *scheduler.Scheduler
	producer *kafka.Producer
}

// NewAPI builds the whole application for the api mode: migrations, database,
// services, handlers, router and scheduler.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	files, err := storage.New(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	producer := kafka.NewProducer(kafka.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic, log)

	ticketSvc := service.NewTicketService(db, producer)
	querySvc := service.NewQueryService(db)
	userSvc := service.NewUserService(db, cfg.JWTSecret, jwtTTL)

	jobs, err := scheduler.New(db, cfg.Timezone, log)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	h := router.New(router.Deps{
		Auth:      handler.NewAuthHandler(userSvc),
		Complaint: handler.NewComplaintHandler(ticketSvc, files),
		Query:     handler.NewQueryHandler(querySvc),
		Files:     handler.NewImportExportHandler(ticketSvc, querySvc),
		JWTSecret: cfg.JWTSecret,
		UploadDir: files.Dir(),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		log:      log,
		httpSrv:  httpSrv,
		jobs:     jobs,
		producer: producer,
	}, nil
}

// Run starts the HTTP server and the scheduler, then blocks until ctx is
// cancelled and shuts both down.
func (a *API) Run(ctx context.Context) error {
	if err := a.jobs.Start(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("http server listening",
		zap.String("addr", a.httpSrv.Addr),
		zap.String("swagger", base+"/swagger"),
		zap.String("health", base+"/health"),
		zap.String("api", base+"/api/v1/"))

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.jobs.Stop()
	if err := a.producer.Close(); err != nil {
		a.log.Warn("kafka producer close", zap.Error(err))
	}
	_ = a.log.Sync()
	return nil
}
