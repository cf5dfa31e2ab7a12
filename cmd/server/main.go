// Package main is the entry point for the lightcore console server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/bbernstein/lightcore-go/internal/api"
	"github.com/bbernstein/lightcore-go/internal/config"
	"github.com/bbernstein/lightcore-go/internal/database"
	"github.com/bbernstein/lightcore-go/internal/database/models"
	"github.com/bbernstein/lightcore-go/internal/database/repositories"
	"github.com/bbernstein/lightcore-go/internal/services/output"
	"github.com/bbernstein/lightcore-go/internal/services/pubsub"
	"github.com/bbernstein/lightcore-go/internal/services/runtime"
	"github.com/bbernstein/lightcore-go/internal/show"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	printBanner(cfg)

	// Connect to the show library database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&models.ShowRecord{},
		&models.Setting{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	showRepo := repositories.NewShowRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Build the show: load a showfile when configured, else start fresh
	var doc *show.Show
	if cfg.ShowfilePath != "" {
		doc, err = show.LoadFile(cfg.ShowfilePath)
		if err != nil {
			log.Fatalf("Failed to load showfile %s: %v", cfg.ShowfilePath, err)
		}
		log.Printf("🎭 Loaded show %q from %s", doc.Name, cfg.ShowfilePath)
	} else {
		doc = show.New(cfg.StartShowName)
		log.Printf("🎭 Started new show %q", doc.Name)
	}

	rt := runtime.New(doc)
	ps := pubsub.New()

	// Art-Net output, env-gated; a saved broadcast address wins over config
	broadcastAddr := cfg.ArtNetBroadcast
	if saved, err := settingRepo.FindByKey(context.Background(), "artnet_broadcast_address"); err == nil && saved != nil && saved.Value != "" {
		log.Printf("📡 Loading saved Art-Net broadcast address: %s", saved.Value)
		broadcastAddr = saved.Value
	}

	var out *output.Service
	if cfg.ArtNetEnabled {
		out = output.NewService(output.Config{
			Enabled:          true,
			BroadcastAddr:    broadcastAddr,
			Port:             cfg.ArtNetPort,
			RefreshRateHz:    cfg.OutputRefreshHz,
			IdleRateHz:       cfg.OutputIdleHz,
			HighRateDuration: cfg.HighRateDuration,
		})
		if err := out.Initialize(); err != nil {
			log.Printf("Warning: Art-Net output initialization failed: %v", err)
			out = nil
		}
	}

	// Session owns the runtime and drives transitions from measured time
	session := api.NewSession(rt, ps, out, cfg.MaxTickDelta)
	session.Start(cfg.TickRateHz)

	handler := api.NewHandler(session, ps, showRepo)

	// Create router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.IsDevelopment(),
	})
	router.Use(corsMiddleware.Handler)

	// Routes
	router.Get("/health", healthCheckHandler)
	router.Route("/api", handler.Routes)
	router.Get("/ws/output", handler.OutputStream)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cleanup services in reverse order
	session.Stop()
	if out != nil {
		out.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// healthCheckHandler returns the server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := fmt.Sprintf(`{
  "status": "ok",
  "timestamp": "%s",
  "version": "%s"
}`, time.Now().UTC().Format(time.RFC3339), Version)

	_, _ = w.Write([]byte(response))
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  lightcore Console Server")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  Art-Net:     %v\n", cfg.ArtNetEnabled)
	fmt.Println("============================================")
}
