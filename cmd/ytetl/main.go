// Command ytetl runs the snapshot pipelines once, as fired by a scheduler
// tick. Each pipeline's envelope is printed as one JSON line on stdout; the
// exit status is 0 only when every run returned 200.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/pipeline"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional; environment always applies)")
	which := flag.String("pipeline", "all", "pipeline to run: categories, trending or all")
	flag.Parse()

	names, err := pipelines(*which)
	if err != nil {
		log.Fatalf("[ytetl] %v", err)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("[ytetl] Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactSecrets(!cfg.Log.DisableRedaction)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := pipeline.OpenResources(ctx, cfg)
	runner := pipeline.NewRunner(cfg, res.Options()...)

	exitCode := 0
	for _, name := range names {
		log.Printf("[ytetl] Running %s pipeline", name)
		result := runner.Run(ctx, name)
		fmt.Println(string(result.JSON()))
		if result.StatusCode != 200 {
			exitCode = 1
		}
	}

	res.Close()
	stop()
	os.Exit(exitCode)
}

func pipelines(which string) ([]string, error) {
	switch which {
	case config.PipelineCategories, config.PipelineTrending:
		return []string{which}, nil
	case "all":
		return []string{config.PipelineCategories, config.PipelineTrending}, nil
	default:
		return nil, fmt.Errorf("unknown pipeline %q (want categories, trending or all)", which)
	}
}
