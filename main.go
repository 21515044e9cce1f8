package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hilsamlabs/workspaces-api/internal/catalog"
	"github.com/hilsamlabs/workspaces-api/internal/config"
	"github.com/hilsamlabs/workspaces-api/internal/database"
	"github.com/hilsamlabs/workspaces-api/internal/handlers"
	"github.com/hilsamlabs/workspaces-api/internal/logging"
	"github.com/hilsamlabs/workspaces-api/internal/middleware"
	"github.com/hilsamlabs/workspaces-api/internal/runtime"
	"github.com/hilsamlabs/workspaces-api/internal/session"
	"github.com/robfig/cron/v3"
)

func main() {
	config.Load()
	logging.Init()

	if err := database.Init(); err != nil {
		log.Fatalf("Database init: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	rt, err := runtime.NewDockerRuntime(ctx, config.Cfg.DockerHost)
	if err != nil {
		log.Fatalf("Docker init: %v", err)
	}

	handlers.Sessions = session.NewManager(rt)
	handlers.Catalog = catalog.New(catalog.Options{
		BaseURL:       config.Cfg.CatalogURL,
		Org:           config.Cfg.CatalogOrg,
		Username:      config.Cfg.CatalogUsername,
		Token:         config.Cfg.CatalogToken,
		FallbackPath:  config.Cfg.FallbackCatalogPath,
		SkipTLSVerify: config.Cfg.CatalogSkipTLSVerify,
	})

	// Expiry sweep on a fixed cadence, one run per tick.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(config.Cfg.SweepSchedule, func() {
		reaped, err := handlers.Sessions.Sweep(context.Background())
		if err != nil {
			log.Printf("Sweep failed: %v", err)
			return
		}
		if reaped > 0 {
			log.Printf("Sweep reaped %d expired sessions", reaped)
		}
	}); err != nil {
		log.Fatalf("Sweep schedule %q: %v", config.Cfg.SweepSchedule, err)
	}
	sweeper.Start()

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Identity)

	// Health (no auth)
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireIdentity)

		r.Get("/images", handlers.GetImages)
		r.Get("/start/{image}", handlers.StartSession)
		r.Get("/list", handlers.ListSessions)
		r.Get("/stop/{name}", handlers.StopSession)
		r.Post("/toggle-autokill/{name}", handlers.ToggleAutokill)
		r.Get("/extend/{name}", handlers.ExtendSession)
		r.Get("/logs", handlers.GetServerLogs)
	})

	srv := &http.Server{
		Addr:    config.Cfg.ListenAddr,
		Handler: r,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", config.Cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("Shutting down...")

	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
