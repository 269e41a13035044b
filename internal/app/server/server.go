package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfdesk/internal/domain/audit"
	"perfdesk/internal/domain/auth"
	"perfdesk/internal/domain/meeting"
	"perfdesk/internal/domain/notice"
	"perfdesk/internal/domain/review"
	"perfdesk/internal/domain/session"
	"perfdesk/internal/platform/config"
	"perfdesk/internal/platform/db"
	"perfdesk/internal/platform/metrics"
	audithandler "perfdesk/internal/transport/http/handlers/audit"
	authhandler "perfdesk/internal/transport/http/handlers/auth"
	meetinghandler "perfdesk/internal/transport/http/handlers/meeting"
	reviewhandler "perfdesk/internal/transport/http/handlers/review"
	"perfdesk/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Router   http.Handler
	Sessions *session.Manager
	Meetings *meeting.Service
	Metrics  *metrics.Collector
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()
	notices := notice.NewCenter(cfg.NoticeTTL)
	reviewService := review.NewService(review.NewStore(pool))
	sessions := session.NewManager(reviewService, notices, collector, cfg.DebounceWindow, cfg.SessionTTL)
	meetings := meeting.NewService(meeting.NewStore(pool), notices, collector, cfg.DebounceWindow)
	auditService := audit.New(pool)
	perms := auth.StaticPermissions{}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		reviewhandler.NewHandler(reviewService, sessions, notices, auditService, perms).RegisterRoutes(r)
		meetinghandler.NewHandler(meetings, notices, auditService, perms).RegisterRoutes(r)
		audithandler.NewHandler(auditService, perms).RegisterRoutes(r)

		r.With(middleware.RequirePermission(auth.PermMetricsRead, perms)).Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
				http.Error(w, "metrics encode failed", http.StatusInternalServerError)
			}
		})
	})

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Sessions: sessions,
		Meetings: meetings,
		Metrics:  collector,
	}, nil
}

// migrationsDir walks up from the working directory until it finds the
// migrations directory, so tests started from a package directory still
// reach the repository's migrations.
func migrationsDir() string {
	candidate := "migrations"
	for i := 0; i < 8; i++ {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		candidate = filepath.Join("..", candidate)
	}
	return "migrations"
}

// Close flushes every pending debounced write before releasing the pool,
// so a clean shutdown does not lose the last edits.
func (a *App) Close() {
	a.Sessions.Close()
	a.Meetings.Close()
	a.DB.Close()
}

func Run() {
	cfg := config.Load()

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("perfdesk server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
