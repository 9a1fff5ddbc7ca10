package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agroconnect/marketplace/internal/config"
	"github.com/agroconnect/marketplace/internal/db"
	httpx "github.com/agroconnect/marketplace/internal/http"
	"github.com/agroconnect/marketplace/internal/observability"
	"github.com/agroconnect/marketplace/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "agromarket-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	// fail fast: no database, no server
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	ctxSchema, cancelSchema := config.WithTimeout(10 * time.Second)

	err = db.EnsureSchema(ctxSchema, pool)

	cancelSchema()

	if err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// upload directory, created once at startup if absent
	uploads, err := storage.NewUploadStore(cfg.UploadDir, prom)

	if err != nil {
		log.Error("upload dir setup failed", "err", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	router := httpx.NewRouter(log, cfg, pool, uploads, prom, reg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}

		_ = shutdownTracer(ctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
