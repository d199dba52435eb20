// Package main provides the entry point for the query runner server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lowkit/sqlrunner/pkg/config"
	"github.com/lowkit/sqlrunner/pkg/engine"
	"github.com/lowkit/sqlrunner/pkg/sqldrv"
	"github.com/lowkit/sqlrunner/pkg/sqldrv/mysql"
	"github.com/lowkit/sqlrunner/pkg/sqldrv/pgsql"
	"github.com/lowkit/sqlrunner/server/handlers"
)

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = config.DefaultPort
	}

	driver := os.Getenv(config.EnvDriver)
	if driver == "" {
		driver = config.DefaultDriver
	}

	dsn := os.Getenv(config.EnvDSN)
	if dsn == "" {
		log.Fatalf("%s is required", config.EnvDSN)
	}

	ctx := context.Background()
	conns, closeClient, err := newConnSource(ctx, driver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := closeClient(); err != nil {
			log.Printf("Failed to close database client: %v", err)
		}
	}()

	executor := engine.NewExecutor()
	registry := engine.NewRegistry(config.DefaultStatementTTL)
	queryHandler := handlers.NewQueryHandler(executor, conns, registry)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", queryHandler.ExecuteQuery)

		r.Post("/statements", queryHandler.SubmitStatement)
		r.Get("/statements/{handle}", queryHandler.GetStatement)
		r.Post("/statements/{handle}/cancel", queryHandler.CancelStatement)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write health response: %v", err)
		}
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting query runner (%s) on port %s", driver, port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err) //nolint:gocritic // exitAfterDefer: intentional - OS cleans up on exit
	}
}

// newConnSource builds the per-request connection source for the configured
// driver, returning the client close function alongside it.
func newConnSource(ctx context.Context, driver, dsn string) (handlers.ConnSource, func() error, error) {
	switch driver {
	case config.DriverPgSQL:
		client, err := pgsql.NewClient(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		source := func(ctx context.Context) (sqldrv.Conn, error) {
			return client.Conn(ctx)
		}
		return source, client.Close, nil
	default:
		client, err := mysql.NewClient(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		source := func(ctx context.Context) (sqldrv.Conn, error) {
			return client.Conn(ctx)
		}
		return source, client.Close, nil
	}
}
