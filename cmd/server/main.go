package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"rift-rewind/internal/api"
	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/collector"
	"rift-rewind/internal/config"
	"rift-rewind/internal/db"
	"rift-rewind/internal/logging"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"
	"rift-rewind/internal/summarize"
)

func main() {
	if path := config.LoadEnv(); path != "" {
		log.Printf("[Server] Loaded .env from: %s", path)
	} else {
		log.Println("[Server] No .env file found, using environment variables")
	}

	configPath := flag.String("config", "", "Path to a TOML config file (default $RIFT_CONFIG)")
	noIndex := flag.Bool("no-index", false, "Run without the lineup index")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Server] %v", err)
	}
	logger := logging.Init(cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))

	client, err := riot.NewClient(cfg.Riot.APIKey,
		riot.WithRegion(cfg.Riot.Region),
		riot.WithPlatform(cfg.Riot.Platform),
		riot.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("[Server] Failed to create Riot client: %v", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	switch status, platform, err := client.CheckKey(startCtx); status {
	case riot.KeyValid:
		log.Printf("[Server] Riot API key accepted by %s", platform.Name)
	case riot.KeyRejected:
		log.Printf("[Server] Riot API key was rejected; upstream calls will fail until it is replaced")
	default:
		log.Printf("[Server] Could not validate Riot API key: %v", err)
	}

	var index db.Index
	if !*noIndex {
		index, err = db.Open(startCtx, cfg.Store.Driver, cfg.Store.DSN, cfg.Store.AuthToken)
		if err != nil {
			log.Printf("[Server] Lineup index unavailable (%v); compareLineup is disabled", err)
			index = nil
		} else {
			defer index.Close()
		}
	}
	cancel()

	var summarizer summarize.Summarizer
	if cfg.Summary.APIKey != "" {
		summarizer = summarize.NewAnthropic(cfg.Summary.APIKey, cfg.Summary.Model, cfg.Summary.MaxTokens)
	} else {
		log.Println("[Server] ANTHROPIC_API_KEY not set; summaries will be empty")
	}

	svc := service.New(client, index, summarizer, service.Options{
		Region:       cfg.Riot.Region,
		Platform:     cfg.Riot.Platform,
		TierBump:     &cfg.Bench.TierBump,
		SampleCap:    cfg.Bench.SampleCap,
		BenchTimeout: cfg.Bench.Timeout.Duration,
		FeatRules:    cfg.FeatRules,
	}, logger)
	svc.SetSampler(&benchmark.Sampler{Source: client, Workers: cfg.Bench.Workers})

	handler := api.NewServer(svc,
		api.WithAllowOrigin(cfg.Server.CORSAllowOrigin),
		api.WithLogger(logger),
	).Handler()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := collector.SetupSignalHandler(func(ctx context.Context) {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Server] Shutdown error: %v", err)
		}
	})

	log.Printf("[Server] Listening on http://localhost:%s (region=%s platform=%s)", cfg.Server.Port, cfg.Riot.Region, cfg.Riot.Platform)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[Server] %v", err)
	}
	<-ctx.Done()
	log.Println("[Server] Stopped")
}
