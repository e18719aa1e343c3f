package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"campus-assistant/internal/api"
	"campus-assistant/internal/config"
	"campus-assistant/internal/core"
	"campus-assistant/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for data ingestion
	ingestDataFlag := flag.Bool("ingest", false, "Run data ingestion from data.md and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Handle data ingestion if flag is set
	if *ingestDataFlag {
		log.Println("Starting data ingestion process...")
		numIngested, err := dbStore.IngestDocumentsFromFile("data.md")
		if err != nil {
			log.Fatalf("Data ingestion failed: %v", err)
		}
		log.Printf("Data ingestion complete. Ingested %d documents. Exiting.", numIngested)
		os.Exit(0)
	}

	// Initialize LLM service
	llmService := core.NewLLMService()
	defer llmService.Close()

	// Initialize domain services
	automation := core.NewAutomationService(dbStore, config.AppConfig.AlertThreshold)
	chatService := core.NewChatService(dbStore, llmService, automation)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, automation, dbStore, config.AppConfig.UploadDir)
	router := api.NewRouter(apiHandler, buildLimiter())

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

func buildLimiter() api.Limiter {
	if config.AppConfig.RateLimitPerMin <= 0 {
		return nil
	}
	if config.AppConfig.RateLimitBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: config.AppConfig.RedisAddr})
		log.Printf("Rate limiting via redis at %s", config.AppConfig.RedisAddr)
		return api.NewRedisLimiter(rdb, config.AppConfig.RateLimitPerMin)
	}
	return api.NewTokenBucket(config.AppConfig.RateLimitPerMin, config.AppConfig.RateLimitPerMin)
}
