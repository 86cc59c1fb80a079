/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load configuration from the environment (and .env when present)
  2. Open the store (MySQL in production, SQLite for local runs)
  3. Ensure the schema for the configured mode (idempotent)
  4. Build the handler and router
  5. Serve with graceful shutdown

Steps 1-3 are each fatal on failure with a diagnostic naming the step, so
an operator can tell a missing variable from an unreachable database from
a failed CREATE TABLE. The server never starts serving before the schema
bootstrap completed.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  in-flight requests, close the store, exit.
*/
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

	"github.com/warp/stock-api/api"
	"github.com/warp/stock-api/config"
	"github.com/warp/stock-api/inventory"
	"github.com/warp/stock-api/store/mysql"
	"github.com/warp/stock-api/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	log.Printf("Database pool ready (%s, %s mode)", cfg.Driver, cfg.Mode)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Migrate(ctx, cfg.Mode); err != nil {
		cancel()
		log.Fatalf("Failed to create schema: %v", err)
	}
	cancel()
	log.Println("Schema ensured")

	handler := api.NewHandler(store, cfg.Mode)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func openStore(cfg *config.Config) (inventory.Store, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.New(mysql.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPass,
			DBName:   cfg.DBName,
		})
	case config.DriverSQLite:
		return sqlite.New(cfg.DBPath)
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}
