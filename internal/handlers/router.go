package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"happythings/internal/clock"
	"happythings/internal/feed"
	mw "happythings/internal/middleware"
	"happythings/internal/services"
)

type RouterConfig struct {
	Entries        *services.EntryService
	Auth           *services.AuthService
	Images         *services.ImageService
	Clock          clock.Clock
	Logger         *zap.Logger
	Feed           feed.Channel
	UploadSecret   []byte
	AllowedOrigins []string
	// Blobs is set when images live in process memory; they are then served under /blobs.
	Blobs BlobReader
}

// NewRouter mounts every HTTP route of the service.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.ZapRequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	entryHandler := NewEntryHandler(cfg.Entries, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Entries, cfg.Auth, cfg.Logger)
	imageHandler := NewImageHandler(cfg.Images, cfg.Logger)
	feedHandler := NewFeedHandler(cfg.Entries, cfg.Feed, cfg.Clock, cfg.Logger)
	authMW := mw.NewAuthMiddleware(cfg.Auth, cfg.UploadSecret)

	r.Get("/feed", feedHandler.Feed)
	r.With(authMW.RequireUploader).Post("/storeImage", imageHandler.Store)
	if cfg.Blobs != nil {
		r.Get("/blobs/*", NewBlobHandler(cfg.Blobs).Get)
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": cfg.Clock.Now().UTC().Format(time.RFC3339)})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", authHandler.Login)
		api.Post("/auth/logout", authHandler.Logout)
		api.Get("/auth/check", authHandler.Check)

		api.Get("/entries", entryHandler.List)
		api.Get("/entries/week", entryHandler.Week)
		api.Get("/entries/date/{date}", entryHandler.GetByDate)
		api.Put("/entries/date/{date}/bonus", entryHandler.UpdateBonus)

		api.Get("/weekly-images", imageHandler.List)
		api.Get("/weekly-images/{weekStart}", imageHandler.Get)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAdmin)
			pr.Put("/entries/date/{date}", entryHandler.Upsert)
			pr.Delete("/entries/id/{id}", entryHandler.SoftDelete)
			pr.Post("/entries/import", entryHandler.Import)
			pr.Get("/admin/overview", adminHandler.Overview)
			pr.Post("/admin/sessions/cleanup", adminHandler.CleanupSessions)
		})
	})
	return r
}
