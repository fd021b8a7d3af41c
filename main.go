package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/subtitle-forge/backend/internal/api"
	"github.com/subtitle-forge/backend/internal/auth"
	"github.com/subtitle-forge/backend/internal/config"
	"github.com/subtitle-forge/backend/internal/db"
	"github.com/subtitle-forge/backend/internal/job"
	"github.com/subtitle-forge/backend/internal/service"
)

func main() {
	cfg := config.Load()

	// Ensure data directories exist
	os.MkdirAll(cfg.DataPath, 0755)
	os.MkdirAll(cfg.UploadPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Subtitle service with configured engines
	svc := service.New(cfg)
	if len(svc.Engines()) == 0 {
		log.Println("WARNING: no translation engine configured. Set OPENAI_API_KEY or ANTHROPIC_API_KEY.")
	}

	// Job queue
	jobQueue := job.NewJobQueue(database.SQL())
	defer jobQueue.Stop()
	jobQueue.RegisterHandler(job.JobTranslate, svc.HandleTranslate)
	jobQueue.RegisterHandler(job.JobCorrect, svc.HandleCorrect)
	jobQueue.RegisterHandler(job.JobTimeSync, svc.HandleTimeSync)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, jobQueue, svc)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Data path: %s", cfg.DataPath)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		jobQueue.Stop()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
