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

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/docs"
	"github.com/adeshyearanty/crm-lead-service/internal/activity"
	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/database"
	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/http/handler"
	"github.com/adeshyearanty/crm-lead-service/internal/http/middleware"
	"github.com/adeshyearanty/crm-lead-service/internal/http/router"
	"github.com/adeshyearanty/crm-lead-service/internal/jobs"
	"github.com/adeshyearanty/crm-lead-service/internal/logger"
	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
	"github.com/adeshyearanty/crm-lead-service/internal/tasks"
)

// @title CRM Lead Service
// @version 1.0
// @description Lead management API: leads, notes, comments, saved views and lead settings

// @contact.name API Support

// @host localhost:3004
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// In staging/production secrets come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(ctx, &cfg.Mongo, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			log.Warn("Error closing database connection", zap.Error(err))
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to ensure indexes", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	queryTimeout := cfg.Mongo.QueryTimeoutDuration()

	// Repositories
	leadRepo := repository.NewMongoCollection[*domain.Lead](db.Collection(domain.CollectionLeads), queryTimeout, m, log)
	noteRepo := repository.NewMongoCollection[*domain.Note](db.Collection(domain.CollectionNotes), queryTimeout, m, log)
	commentRepo := repository.NewMongoCollection[*domain.Comment](db.Collection(domain.CollectionComments), queryTimeout, m, log)
	viewRepo := repository.NewMongoCollection[*domain.View](db.Collection(domain.CollectionViews), queryTimeout, m, log)
	companySizeRepo := repository.NewMongoCollection[*domain.CompanySize](db.Collection(domain.CollectionCompanySizes), queryTimeout, m, log)
	industryTypeRepo := repository.NewMongoCollection[*domain.IndustryType](db.Collection(domain.CollectionIndustryTypes), queryTimeout, m, log)
	leadSourceRepo := repository.NewMongoCollection[*domain.LeadSource](db.Collection(domain.CollectionLeadSources), queryTimeout, m, log)
	leadStatusRepo := repository.NewMongoCollection[*domain.LeadStatus](db.Collection(domain.CollectionLeadStatuses), queryTimeout, m, log)

	fileStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Activity delivery runs in the background
	sink, closeSink, err := activity.NewSink(&cfg.Activity, cfg.ApiKey.Value, log)
	if err != nil {
		return fmt.Errorf("failed to initialize activity sink: %w", err)
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Warn("Error closing activity sink", zap.Error(err))
		}
	}()
	activities := activity.NewDispatcher(sink, activity.Options{
		QueueSize: cfg.Activity.QueueSize,
		Workers:   cfg.Activity.Workers,
		Timeout:   cfg.Activity.TimeoutDuration(),
	}, m, log)
	activities.Start()

	taskClient := tasks.NewClient(cfg.Tasks.URL, cfg.ApiKey.Value, cfg.Tasks.TimeoutDuration(), log)
	planner := query.NewLeadPlanner(query.NewLeadCompiler())

	// Services
	leadService := service.NewLeadService(leadRepo, planner, fileStorage, activities, m, log)
	noteService := service.NewNoteService(noteRepo, commentRepo, taskClient, fileStorage, activities, log)
	noteMediaService := service.NewNoteMediaService(fileStorage, m, log)
	commentService := service.NewCommentService(commentRepo, noteRepo, activities, log)
	viewService := service.NewViewService(viewRepo, log)
	companySizeService := service.NewReferenceService[*domain.CompanySize](companySizeRepo, leadRepo, service.CompanySizeKind, log)
	industryTypeService := service.NewReferenceService[*domain.IndustryType](industryTypeRepo, leadRepo, service.IndustryTypeKind, log)
	leadSourceService := service.NewReferenceService[*domain.LeadSource](leadSourceRepo, leadRepo, service.LeadSourceKind, log)
	leadStatusService := service.NewReferenceService[*domain.LeadStatus](leadStatusRepo, leadRepo, service.LeadStatusKind, log)

	maxUpload := cfg.Storage.MaxUploadBytes()
	rt := router.NewRouter(cfg, log, m, middleware.NewRateLimiter(&cfg.RateLimit, log), router.Handlers{
		Lead:         handler.NewLeadHandler(leadService, maxUpload, log),
		Note:         handler.NewNoteHandler(noteService, noteMediaService, maxUpload, log),
		Comment:      handler.NewCommentHandler(commentService, log),
		View:         handler.NewViewHandler(viewService, log),
		CompanySize:  handler.NewCompanySizeHandler(companySizeService, log),
		IndustryType: handler.NewIndustryTypeHandler(industryTypeService, log),
		LeadSource:   handler.NewLeadSourceHandler(leadSourceService, log),
		LeadStatus:   handler.NewLeadStatusHandler(leadStatusService, log),
		Health:       handler.NewHealthHandler(db, log),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.LeadStatsEnabled {
		scheduler = jobs.NewScheduler(log)
		job := jobs.NewLeadStatsJob(leadService, m, log)
		if err := scheduler.Add(cfg.Jobs.LeadStatsCron, cfg.Jobs.LeadStatsTimeoutDuration(), job); err != nil {
			log.Error("Failed to register lead stats job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with lead stats job",
				zap.String("cron_expr", cfg.Jobs.LeadStatsCron),
				zap.Duration("timeout", cfg.Jobs.LeadStatsTimeoutDuration()),
			)
		}
	} else {
		log.Info("Lead stats job disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Deliver queued activities before the sink closes
		if err := activities.Close(ctx); err != nil {
			log.Warn("Activities left undelivered", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
