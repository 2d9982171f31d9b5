// Command stageload reads the transactions, users and products CSV files
// and replaces the contents of their staging relations in the configured
// database, then reports the row count of each relation.
//
// Configuration comes from the environment (and an optional .env file or
// YAML file named by STAGELOAD_CONFIG); there are no flags. The exit code
// identifies the failing stage.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stageload/internal/config"
	"stageload/internal/failure"
	"stageload/internal/metrics"
	"stageload/internal/metrics/datadog"
	"stageload/internal/metrics/prompush"
	"stageload/internal/pipeline"

	// Link every storage backend; db_driver picks one at run time.
	_ "stageload/internal/storage/all"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

func run(stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return failure.ExitConfigError
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		return failure.ExitConfigError
	}

	flush := setupMetrics(cfg)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	_, err = pipeline.Run(ctx, cfg, pipeline.Deps{Out: stdout})
	log.Printf("stageload: finished in %s exit=%d", time.Since(start).Truncate(time.Millisecond), failure.ExitCode(err))
	return failure.ExitCode(err)
}

// setupMetrics installs the configured metrics backend and returns a func
// that flushes it. Backend errors disable metrics rather than fail the run.
func setupMetrics(cfg config.Config) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch name := strings.ToLower(cfg.MetricsBackend); name {
	case "pushgateway", "prom", "prometheus":
		b, err = prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
		log.Printf("metrics: backend=pushgateway url=%s job=%s", cfg.PushgatewayURL, cfg.Job)
	case "datadog", "dogstatsd":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DogStatsDAddr,
			Namespace:  "stageload.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		log.Printf("metrics: backend=datadog addr=%s", cfg.DogStatsDAddr)
	case "", "none":
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: %v; using nop", err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}
