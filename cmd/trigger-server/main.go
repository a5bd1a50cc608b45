// Command trigger-server exposes the pipelines over HTTP for schedulers
// that fire webhooks instead of commands.
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

	"github.com/ignite/trending-snapshots/internal/api"
	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/pipeline"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional; environment always applies)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("[trigger-server] Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactSecrets(!cfg.Log.DisableRedaction)

	res := pipeline.OpenResources(context.Background(), cfg)
	defer res.Close()

	runner := pipeline.NewRunner(cfg, res.Options()...)
	handlers := api.NewHandlers(runner, res.Ledger, res.Redis)
	server := api.NewServer(cfg.Server, handlers, res.Metrics.Handler())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.Printf("[trigger-server] Listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[trigger-server] Server error: %v", err)
		}
	}()

	<-done
	log.Println("[trigger-server] Shutting down...")

	// a run in flight gets the full write timeout to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[trigger-server] Shutdown error: %v", err)
	}
	log.Println("[trigger-server] Stopped")
}
