package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/config"
	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/http/handler"
	"github.com/adeshyearanty/crm-lead-service/internal/http/middleware"
	"github.com/adeshyearanty/crm-lead-service/internal/metrics"

	_ "github.com/adeshyearanty/crm-lead-service/docs" // swagger docs
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Lead         *handler.LeadHandler
	Note         *handler.NoteHandler
	Comment      *handler.CommentHandler
	View         *handler.ViewHandler
	CompanySize  *handler.SettingsHandler[*domain.CompanySize]
	IndustryType *handler.SettingsHandler[*domain.IndustryType]
	LeadSource   *handler.SettingsHandler[*domain.LeadSource]
	LeadStatus   *handler.SettingsHandler[*domain.LeadStatus]
	Health       *handler.HealthHandler
}

type Router struct {
	cfg         *config.Config
	logger      *zap.Logger
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter
	h           Handlers
}

func NewRouter(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, rateLimiter *middleware.RateLimiter, h Handlers) *Router {
	return &Router{
		cfg:         cfg,
		logger:      logger,
		metrics:     m,
		rateLimiter: rateLimiter,
		h:           h,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Operational endpoints
	r.Get("/health", rt.h.Health.Live)
	r.Get("/health/db", rt.h.Health.Database)
	r.Get("/health/ready", rt.h.Health.Ready)

	if rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.Server.RequestTimeout > 0 {
			r.Use(chimw.Timeout(time.Duration(rt.cfg.Server.RequestTimeout) * time.Second))
		}

		// Leads
		r.Route("/leads", func(r chi.Router) {
			r.Post("/", rt.h.Lead.CreateLead)
			r.Post("/bulk-delete", rt.h.Lead.BulkDelete)
			r.Post("/bulk-update", rt.h.Lead.BulkUpdate)
			r.Post("/archive", rt.h.Lead.Archive)
			r.Post("/search", rt.h.Lead.Search)
			r.Post("/export-selected", rt.h.Lead.ExportSelected)
			r.Post("/export/advanced", rt.h.Lead.ExportAdvanced)
			r.Get("/{id}", rt.h.Lead.GetLead)
			r.Put("/{id}", rt.h.Lead.UpdateLead)
			r.Delete("/{id}", rt.h.Lead.DeleteLead)
		})

		// Notes and their comments
		r.Route("/notes", func(r chi.Router) {
			r.Post("/", rt.h.Note.CreateNote)
			r.Post("/media/upload", rt.h.Note.UploadMedia)
			r.Get("/lead/{leadId}", rt.h.Note.ListByLead)
			r.Put("/{noteId}", rt.h.Note.UpdateNote)
			r.Delete("/{noteId}", rt.h.Note.DeleteNote)
			r.Put("/{noteId}/pin", rt.h.Note.PinNote)

			r.Route("/{noteId}/comments", func(r chi.Router) {
				r.Post("/", rt.h.Comment.Create)
				r.Get("/", rt.h.Comment.List)
				r.Put("/{commentId}", rt.h.Comment.Update)
				r.Delete("/{commentId}", rt.h.Comment.Delete)
			})
		})

		// Saved views
		r.Route("/views", func(r chi.Router) {
			r.Post("/", rt.h.View.CreateView)
			r.Get("/", rt.h.View.ListViews)
			r.Get("/default", rt.h.View.GetDefaultView)
			r.Get("/{id}", rt.h.View.GetView)
			r.Put("/{id}", rt.h.View.UpdateView)
			r.Delete("/{id}", rt.h.View.DeleteView)
		})

		// Reference data
		r.Route("/company-sizes", rt.h.CompanySize.Routes)
		r.Route("/industry-types", rt.h.IndustryType.Routes)
		r.Route("/sources", rt.h.LeadSource.Routes)
		r.Route("/statuses", rt.h.LeadStatus.Routes)
	})

	return r
}
