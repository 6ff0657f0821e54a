// Package app assembles the stores and services shared by the HTTP server
// and the command-line tool from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"happythings/internal/clock"
	"happythings/internal/config"
	"happythings/internal/crypto"
	"happythings/internal/db"
	"happythings/internal/feed"
	"happythings/internal/handlers"
	"happythings/internal/ratelimit"
	"happythings/internal/services"
	"happythings/internal/storage"
	"happythings/internal/store"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Calendar *clock.Calendar
	Entries  *services.EntryService
	Auth     *services.AuthService
	Images   *services.ImageService

	// memBlobs is non-nil with BLOB_BACKEND=memory.
	memBlobs *storage.Memory
	closers  []func() error
}

type repositories struct {
	entries  services.EntryRepository
	sessions services.SessionRepository
	images   services.WeeklyImageRepository
}

// New connects to the configured backends. Without DATABASE_URL everything
// lives in memory and is lost on exit.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	cal, err := clock.NewCalendar(clock.System{}, cfg.BusinessTimezone)
	if err != nil {
		return nil, err
	}
	a.Calendar = cal

	repos, err := a.openRepositories(ctx)
	if err != nil {
		return nil, err
	}
	limiter, err := a.newLimiter()
	if err != nil {
		return nil, err
	}
	blobs, err := a.newBlobStore(ctx)
	if err != nil {
		return nil, err
	}

	var tokens *crypto.TokenService
	if cfg.SessionSecret != "" {
		if tokens, err = crypto.NewTokenService([]byte(cfg.SessionSecret)); err != nil {
			return nil, err
		}
	}
	hash, err := passwordHash(cfg)
	if err != nil {
		return nil, err
	}

	a.Auth = services.NewAuthService(repos.sessions, limiter, tokens, cal.Clock, logger, services.AuthOptions{
		PasswordHash: hash,
		SessionTTL:   cfg.SessionTTL,
	})
	a.Entries = services.NewEntryService(repos.entries, a.Auth, cal)
	a.Images = services.NewImageService(repos.images, blobs, cal.Clock)
	ok = true
	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	if a.Config.DatabaseURL == "" {
		a.Logger.Warn("DATABASE_URL not set; using in-memory store")
		mem := store.NewMemory()
		return repositories{entries: mem, sessions: mem, images: mem}, nil
	}
	conn, err := db.Open(ctx, a.Config.DatabaseURL)
	if err != nil {
		return repositories{}, err
	}
	a.DB = conn
	a.closers = append(a.closers, conn.Close)
	return repositories{
		entries:  store.NewEntryStore(conn),
		sessions: store.NewSessionStore(conn),
		images:   store.NewWeeklyImageStore(conn),
	}, nil
}

func (a *App) newLimiter() (ratelimit.Limiter, error) {
	policy := ratelimit.Policy{MaxFailures: a.Config.LoginMaxFailures, Window: a.Config.LoginWindow}
	if a.Config.RedisURL == "" {
		return ratelimit.NewMemory(a.Config.LoginLimiterCap, policy, nil), nil
	}
	client, err := ratelimit.NewRedisClient(a.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return ratelimit.NewRedis(client, policy), nil
}

func (a *App) newBlobStore(ctx context.Context) (services.BlobStore, error) {
	if a.Config.BlobBackend == "memory" {
		a.memBlobs = storage.NewMemory(a.Config.APIBaseURL + "/blobs")
		return a.memBlobs, nil
	}
	return storage.NewS3(ctx, storage.S3Options{
		Bucket:        a.Config.S3Bucket,
		Region:        a.Config.S3Region,
		Endpoint:      a.Config.S3Endpoint,
		AccessKey:     a.Config.S3AccessKey,
		SecretKey:     a.Config.S3SecretKey,
		PublicBaseURL: a.Config.S3PublicBaseURL,
	})
}

func passwordHash(cfg *config.Config) ([]byte, error) {
	if cfg.AdminPasswordHash != "" {
		return []byte(cfg.AdminPasswordHash), nil
	}
	h, err := services.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return h, nil
}

// Migrate applies pending migrations. It is a no-op for the in-memory store.
func (a *App) Migrate(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return db.RunMigrations(ctx, a.DB)
}

func (a *App) Router() http.Handler {
	cfg := handlers.RouterConfig{
		Entries: a.Entries,
		Auth:    a.Auth,
		Images:  a.Images,
		Clock:   a.Calendar.Clock,
		Logger:  a.Logger,
		Feed: feed.Channel{
			Title:       a.Config.SiteTitle,
			Description: a.Config.SiteDescription,
			SiteURL:     a.Config.SiteURL,
		},
		UploadSecret:   []byte(a.Config.UploadSecret),
		AllowedOrigins: a.Config.CORSAllowedOrigin,
	}
	if a.memBlobs != nil {
		cfg.Blobs = a.memBlobs
	}
	return handlers.NewRouter(cfg)
}

// RunSessionCleanup deletes expired sessions every interval until ctx is done.
func (a *App) RunSessionCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Auth.CleanupExpiredSessions(ctx); err != nil {
				a.Logger.Error("session cleanup failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
