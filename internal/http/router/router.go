package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-tracker/internal/config"
	"github.com/straye-as/project-tracker/internal/http/handler"
	"github.com/straye-as/project-tracker/internal/http/middleware"
	"github.com/straye-as/project-tracker/internal/repository"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/project-tracker/docs" // Registers the swagger document
)

// Handlers bundles the HTTP handlers mounted under /api/v1
type Handlers struct {
	Group          *handler.GroupHandler
	Project        *handler.ProjectHandler
	GTM            *handler.GTMHandler
	Characteristic *handler.CharacteristicHandler
	Template       *handler.TemplateHandler
	Attachment     *handler.AttachmentHandler
	Dashboard      *handler.DashboardHandler
	Backup         *handler.BackupHandler
	Sync           *handler.SyncHandler
}

type Router struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       *repository.Store
	rateLimiter *middleware.RateLimiter
	h           Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	store *repository.Store,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		rateLimiter: rateLimiter,
		h:           handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security, "/swagger/"))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness probe: the document store must be readable
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		var groups, projects int
		err := rt.store.View(func(doc *repository.Document) error {
			groups, projects = len(doc.ProductGroups), len(doc.Projects)
			return nil
		})

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			rt.logger.Error("store health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "store",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "store",
			"stats": map[string]interface{}{
				"path":           rt.store.Path(),
				"product_groups": groups,
				"projects":       projects,
			},
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Product groups
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", rt.h.Group.List)
			r.Post("/", rt.h.Group.Create)
			r.Get("/field-meta", rt.h.Group.FieldMeta)
			r.Get("/{id}", rt.h.Group.GetByID)
			r.Put("/{id}", rt.h.Group.Update)
			r.Delete("/{id}", rt.h.Group.Delete)
		})

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.h.Project.List)
			r.Post("/", rt.h.Project.Create)
			r.Get("/field-meta", rt.h.Project.FieldMeta)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.h.Project.GetByID)
				r.Put("/", rt.h.Project.Update)
				r.Delete("/", rt.h.Project.Delete)

				// Comments and history
				r.Get("/comments", rt.h.Project.ListComments)
				r.Post("/comments", rt.h.Project.AddComment)
				r.Put("/comments/{commentId}", rt.h.Project.UpdateComment)
				r.Delete("/comments/{commentId}", rt.h.Project.DeleteComment)
				r.Get("/history", rt.h.Project.ListHistory)
				r.Post("/history", rt.h.Project.AddHistoryEvent)
				r.Delete("/history/{eventId}", rt.h.Project.DeleteHistoryEvent)

				// GTM plan
				r.Put("/current-stage", rt.h.GTM.SetCurrentStage)
				r.Get("/stages", rt.h.GTM.ListStages)
				r.Post("/stages", rt.h.GTM.AddStage)
				r.Post("/stages/apply-template", rt.h.GTM.ApplyTemplate)
				r.Put("/stages/{stageId}", rt.h.GTM.UpdateStage)
				r.Delete("/stages/{stageId}", rt.h.GTM.DeleteStage)

				// Tasks
				r.Get("/tasks", rt.h.GTM.ListTasks)
				r.Post("/tasks", rt.h.GTM.AddTask)
				r.Put("/tasks/{taskId}", rt.h.GTM.UpdateTask)
				r.Delete("/tasks/{taskId}", rt.h.GTM.DeleteTask)
				r.Post("/tasks/{taskId}/subtasks", rt.h.GTM.AddSubtask)
				r.Put("/tasks/{taskId}/subtasks/{subtaskId}", rt.h.GTM.UpdateSubtask)
				r.Delete("/tasks/{taskId}/subtasks/{subtaskId}", rt.h.GTM.DeleteSubtask)
				r.Post("/tasks/{taskId}/comments", rt.h.GTM.AddTaskComment)
				r.Delete("/tasks/{taskId}/comments/{commentId}", rt.h.GTM.DeleteTaskComment)

				// Characteristics
				r.Get("/characteristics", rt.h.Characteristic.ListSections)
				r.Post("/characteristics/apply-template", rt.h.Characteristic.ApplyTemplate)
				r.Post("/characteristics/copy", rt.h.Characteristic.CopyFromProject)
				r.Post("/characteristics/sections", rt.h.Characteristic.AddSection)
				r.Put("/characteristics/sections/{sectionId}", rt.h.Characteristic.UpdateSection)
				r.Delete("/characteristics/sections/{sectionId}", rt.h.Characteristic.DeleteSection)
				r.Post("/characteristics/sections/{sectionId}/fields", rt.h.Characteristic.AddField)
				r.Put("/characteristics/sections/{sectionId}/fields/{fieldId}", rt.h.Characteristic.UpdateField)
				r.Delete("/characteristics/sections/{sectionId}/fields/{fieldId}", rt.h.Characteristic.DeleteField)

				// Attachments
				r.Get("/files", rt.h.Attachment.ListFiles)
				r.With(rt.rateLimiter.LimitImports).Post("/files", rt.h.Attachment.UploadFile)
				r.Put("/files/{fileId}", rt.h.Attachment.UpdateFile)
				r.Get("/files/{fileId}/download", rt.h.Attachment.DownloadFile)
				r.Delete("/files/{fileId}", rt.h.Attachment.DeleteFile)
				r.Get("/images", rt.h.Attachment.ListImages)
				r.With(rt.rateLimiter.LimitImports).Post("/images", rt.h.Attachment.UploadImage)
				r.Put("/images/{imageId}", rt.h.Attachment.UpdateImage)
				r.Get("/images/{imageId}/download", rt.h.Attachment.DownloadImage)
				r.Delete("/images/{imageId}", rt.h.Attachment.DeleteImage)

				// Excel exchange
				r.Get("/export", rt.h.Sync.ExportProjectBundle)
				r.Get("/export/stages", rt.h.Sync.ExportStages)
				r.Get("/export/characteristics", rt.h.Sync.ExportCharacteristics)
				r.With(rt.rateLimiter.LimitImports).Post("/import/stages", rt.h.Sync.ImportStages)
				r.With(rt.rateLimiter.LimitImports).Post("/import/characteristics", rt.h.Sync.ImportCharacteristics)
			})
		})

		// Templates
		r.Route("/templates", func(r chi.Router) {
			r.Get("/gtm", rt.h.Template.ListGTM)
			r.Post("/gtm", rt.h.Template.CreateGTM)
			r.Get("/gtm/{templateId}", rt.h.Template.GetGTM)
			r.Put("/gtm/{templateId}", rt.h.Template.UpdateGTM)
			r.Delete("/gtm/{templateId}", rt.h.Template.DeleteGTM)
			r.Get("/characteristics", rt.h.Template.ListCharacteristic)
			r.Post("/characteristics", rt.h.Template.CreateCharacteristic)
			r.Get("/characteristics/{templateId}", rt.h.Template.GetCharacteristic)
			r.Put("/characteristics/{templateId}", rt.h.Template.UpdateCharacteristic)
			r.Delete("/characteristics/{templateId}", rt.h.Template.DeleteCharacteristic)
		})

		// Portfolio exports and imports
		r.Get("/export/projects", rt.h.Sync.ExportProjects)
		r.Get("/export/gtm-overview", rt.h.Sync.ExportGTMOverview)
		r.With(rt.rateLimiter.LimitImports).Post("/import/projects", rt.h.Sync.ImportProjects)

		// Dashboard
		r.Get("/dashboard", rt.h.Dashboard.Get)

		// Backups
		r.Route("/backups", func(r chi.Router) {
			r.Get("/", rt.h.Backup.List)
			r.Post("/", rt.h.Backup.Create)
			r.Post("/restore", rt.h.Backup.Restore)
		})
	})

	return r
}
