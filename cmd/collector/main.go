package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"rift-rewind/internal/collector"
	"rift-rewind/internal/config"
	"rift-rewind/internal/db"
	"rift-rewind/internal/logging"
	"rift-rewind/internal/notify"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/storage"
)

func main() {
	if path := config.LoadEnv(); path != "" {
		fmt.Printf("Loaded .env from: %s\n", path)
	} else {
		log.Println("No .env file found, using environment variables")
	}

	riotID := flag.String("riot-id", "", "Starting Riot ID (e.g., 'Player#NA1')")
	puuid := flag.String("puuid", "", "Starting PUUID")
	matchCount := flag.Int("count", collector.DefaultMatchesPerPlayer, "Number of matches to fetch per player")
	maxPlayers := flag.Int("max-players", 100, "Maximum unique players to crawl (0 = unlimited)")
	maxMatches := flag.Int("max-matches", 0, "Stop after this many matches (0 = unlimited)")
	workers := flag.Int("workers", collector.DefaultWorkerCount, "Concurrent match fetchers")
	rotateEvery := flag.Int("rotate", storage.DefaultMaxMatchesPerFile, "Matches per archive file")
	index := flag.Bool("index", false, "Also push lineup records into the configured index")
	archive := flag.Bool("archive", true, "Write normalized matches to BLOB_STORAGE_PATH")
	configPath := flag.String("config", "", "Path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.Init(cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))

	if *riotID == "" && *puuid == "" {
		fmt.Println("Usage:")
		fmt.Println("  collector --riot-id='Player#NA1' [--count=20] [--max-players=100] [--index]")
		fmt.Println("  collector --puuid=PUUID [--count=20] [--max-players=100] [--index]")
		fmt.Println()
		fmt.Println("Storage path is set via BLOB_STORAGE_PATH in .env")
		fmt.Println()
		fmt.Println("Starting from one player, the crawler snowballs through the players")
		fmt.Println("found in their ranked games (Emerald IV and above).")
		fmt.Println()
		fmt.Println("Archived matches go to rotating NDJSON files in:")
		fmt.Println("  hot/   - Active writes")
		fmt.Println("  warm/  - Closed files, ready for 'rift index build'")
		fmt.Println("  cold/  - Compressed archives")
		os.Exit(1)
	}

	client, err := riot.NewClient(cfg.Riot.APIKey,
		riot.WithRegion(cfg.Riot.Region),
		riot.WithPlatform(cfg.Riot.Platform),
		riot.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	// Cancelling ctx stops the crawl; sinks are still flushed.
	ctx := collector.SetupSignalHandler(func(context.Context) {
		fmt.Println("\n[Shutdown] Gracefully shutting down...")
	})

	// Registered first so it runs after the sinks are closed.
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	var sinks []collector.Sink

	if *archive {
		dataDir := strings.Trim(cfg.BlobPath, "\"")
		if dataDir == "" {
			log.Fatal("BLOB_STORAGE_PATH environment variable not set (use --archive=false to skip)")
		}
		fmt.Printf("Using storage path: %s\n", dataDir)

		rotator, err := storage.NewFileRotator(dataDir,
			storage.WithMaxMatches(*rotateEvery),
			storage.WithLogger(logger),
		)
		if err != nil {
			log.Fatalf("Failed to create file rotator: %v", err)
		}
		defer func() {
			if err := rotator.Close(); err != nil {
				log.Printf("Error closing rotator: %v", err)
			}
		}()
		sinks = append(sinks, collector.NewArchiveSink(rotator))
	}

	var indexSink *collector.IndexSink
	if *index {
		idx, err := db.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cfg.Store.AuthToken)
		if err != nil {
			log.Fatalf("Failed to open lineup index: %v", err)
		}
		defer idx.Close()
		indexSink = collector.NewIndexSink(idx, 0)
		sinks = append(sinks, indexSink)
	}

	if len(sinks) == 0 {
		log.Fatal("Nothing to write: enable --archive or --index")
	}

	seed := *puuid
	if *riotID != "" {
		gameName, tagLine, ok := strings.Cut(*riotID, "#")
		if !ok {
			log.Fatalf("Invalid Riot ID format '%s', expected 'GameName#TagLine'", *riotID)
		}
		fmt.Printf("Looking up Riot ID: %s#%s...\n", gameName, tagLine)
		lookupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		account, err := client.GetAccountByRiotID(lookupCtx, strings.TrimSpace(gameName), strings.TrimSpace(tagLine))
		cancel()
		if err != nil {
			log.Fatalf("Failed to lookup %s: %v", *riotID, err)
		}
		fmt.Printf("  Found PUUID: %s\n", account.PUUID)
		seed = account.PUUID
	}

	spider := collector.NewSpider(client, collector.SpiderConfig{
		MatchesPerPlayer: *matchCount,
		MaxPlayers:       *maxPlayers,
		MaxMatches:       *maxMatches,
		WorkerCount:      *workers,
		Logger:           logger,
	}, sinks...)

	fmt.Printf("Crawling with %d workers...\n", *workers)
	stats, err := spider.Run(ctx, seed)

	fmt.Println("\n=== Collection Complete ===")
	fmt.Println(stats)
	if indexSink != nil {
		fmt.Printf("Lineup records indexed: %d\n", indexSink.Pushed())
	}
	if cfg.Notify.WebhookURL != "" {
		report := notify.CrawlReport{
			Seed:             seed,
			PlayersProcessed: stats.PlayersProcessed,
			PlayersSkipped:   stats.PlayersSkipped,
			MatchesWritten:   stats.MatchesWritten,
			MatchesFailed:    stats.MatchesFailed,
			Elapsed:          stats.Elapsed,
			Err:              err,
			KeyRejected:      collector.IsAPIKeyError(err),
		}
		if indexSink != nil {
			report.Indexed = indexSink.Pushed()
		}
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		if nerr := notify.NewWebhook(cfg.Notify.WebhookURL).SendCrawlReport(notifyCtx, report); nerr != nil {
			log.Printf("Failed to send crawl report: %v", nerr)
		}
		cancel()
	}

	if err != nil {
		if collector.IsAPIKeyError(err) {
			log.Printf("Riot API key rejected, replace RIOT_API_KEY and rerun: %v", err)
		} else {
			log.Printf("Crawl failed: %v", err)
		}
		exitCode = 1
	}
}
