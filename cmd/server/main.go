/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the operations dashboard server. Handles
  configuration loading, dependency injection, the reminder scheduler,
  and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML configuration
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start the reminder scheduler (if configured)
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to the YAML configuration file (default: opsboard.yaml)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the reminder scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with the default config path
  ./server

  # Run with an explicit config
  ./server -config=./deploy/opsboard.yaml

SEE ALSO:
  - config/config.go: Configuration format
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/econs/opsboard/api"
	"github.com/econs/opsboard/config"
	"github.com/econs/opsboard/store/sqlite"
)

func main() {
	configPath := flag.String("config", "opsboard.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := sqlite.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler, err := api.NewHandler(store, cfg)
	if err != nil {
		log.Fatalf("Failed to build handler: %v", err)
	}

	reminder, err := api.StartReminder(handler)
	if err != nil {
		log.Fatalf("Failed to start reminder scheduler: %v", err)
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if reminder != nil {
		<-reminder.Stop().Done()
	}

	log.Println("Server stopped")
}
