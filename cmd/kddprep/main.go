package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"kddprep/internal/config"
	"kddprep/internal/metrics"
	"kddprep/internal/metrics/datadog"
	"kddprep/internal/metrics/prompush"

	// register all backends with the blob and warehouse factories.
	// config selects which to use but support for all of them is compiled in.
	_ "kddprep/internal/blob/all"
	_ "kddprep/internal/warehouse/all"
)

// main is the entry point for the kddprep binary. It loads the pipeline
// config, optionally initializes a metrics backend, and executes the four
// pipeline stages: mount, fetch, stream, register.
func main() {
	var (
		cfgPath           string
		stagingDir        string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/kdd.json", "pipeline config JSON path")
	flag.StringVar(&stagingDir, "staging", "data", "base directory for mount staging")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(p.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			break
		}
		log.Printf("metrics: backend=pushgateway url=%v job=%v", gwURL, p.Job)
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}()

	case "datadog":
		addr := dogstatsdAddrFlg
		if addr == "" {
			addr = os.Getenv("DOGSTATSD_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			GlobalTags: []string{"job:" + p.Job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			break
		}
		log.Printf("metrics: backend=datadog addr=%v job=%v", addr, p.Job)
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}()

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: job=%s mount=%s datasets=%d warehouse=%s",
			p.Job, p.Mount.Path, len(p.Datasets), p.Warehouse.Kind)
	}

	if err := run(ctx, p, stagingDir, *verbose); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
