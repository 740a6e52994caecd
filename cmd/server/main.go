package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/recorre/indie-comments-cloud/internal/config"
	"github.com/recorre/indie-comments-cloud/internal/server"
	"github.com/recorre/indie-comments-cloud/internal/utils"

	_ "github.com/recorre/indie-comments-cloud/docs/api" // Swagger docs
)

// @title Indie Comments API
// @version 1.0.0
// @description Auth gateway and widget backend for the Indie Comments embeddable commenting service

// @contact.name API Support
// @contact.url https://github.com/recorre/indie-comments-cloud

// @host localhost:4130
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Warn early when the upstream is unreachable; requests will still be
	// attempted and fail individually.
	if err := utils.PingUpstream(cfg.UpstreamBaseURL); err != nil {
		log.Printf("Warning: upstream %s unreachable: %v", cfg.UpstreamBaseURL, err)
	}
	if cfg.UpstreamAPIKey == "" {
		log.Printf("Warning: NOCODEBACKEND_API_KEY not set, proxy requests will fail")
	}

	app := server.New(cfg, server.Options{})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
