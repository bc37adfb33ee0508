// Command rift runs the match analytics offline or against the live API and
// prints the results as tables.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"rift-rewind/internal/config"
	"rift-rewind/internal/db"
	"rift-rewind/internal/logging"
	"rift-rewind/internal/report"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"
	"rift-rewind/internal/summarize"
)

var (
	configPath string
	fixtureDir string
	jsonOut    bool
	noSummary  bool

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rift",
	Short: "League of Legends match analytics",
	Long: "Aggregate match timelines, fingerprint lineups, benchmark players against\n" +
		"higher-tier peers and maintain the lineup index.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		config.LoadEnv()
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger = logging.New(os.Stderr, cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a TOML config file (default $RIFT_CONFIG)")
	pf.StringVar(&fixtureDir, "dir", "", "read matches and timelines from this directory instead of the API")
	pf.BoolVar(&jsonOut, "json", false, "print JSON instead of tables")
	pf.BoolVar(&noSummary, "no-summary", false, "skip generated text even when ANTHROPIC_API_KEY is set")

	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(recapCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(lineupCmd)
	rootCmd.AddCommand(rankCmd)
}

// riotAPI is the live client, or saved payloads when --dir is set.
func riotAPI() (service.RiotAPI, error) {
	if fixtureDir != "" {
		return riot.FileSource{Dir: fixtureDir}, nil
	}
	client, err := riot.NewClient(cfg.Riot.APIKey,
		riot.WithRegion(cfg.Riot.Region),
		riot.WithPlatform(cfg.Riot.Platform),
		riot.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%w (set RIOT_API_KEY or use --dir)", err)
	}
	return client, nil
}

func newService(api service.RiotAPI, index db.Index) *service.Service {
	var summarizer summarize.Summarizer
	if cfg.Summary.APIKey != "" && !noSummary {
		summarizer = summarize.NewAnthropic(cfg.Summary.APIKey, cfg.Summary.Model, cfg.Summary.MaxTokens)
	}
	return service.New(api, index, summarizer, service.Options{
		Region:       cfg.Riot.Region,
		Platform:     cfg.Riot.Platform,
		TierBump:     &cfg.Bench.TierBump,
		SampleCap:    cfg.Bench.SampleCap,
		BenchTimeout: cfg.Bench.Timeout.Duration,
		FeatRules:    cfg.FeatRules,
	}, logger)
}

// splitRiotID parses "GameName#TagLine".
func splitRiotID(id string) (gameName, tagLine string, err error) {
	gameName, tagLine, ok := strings.Cut(id, "#")
	gameName, tagLine = strings.TrimSpace(gameName), strings.TrimSpace(tagLine)
	if !ok || gameName == "" || tagLine == "" {
		return "", "", fmt.Errorf("invalid Riot ID %q, expected 'GameName#TagLine'", id)
	}
	return gameName, tagLine, nil
}

// playerParams fills the player fields of p from --riot-id or --puuid.
func playerParams(p *service.Params, riotID, puuid string) error {
	p.PUUID = puuid
	if riotID == "" {
		return nil
	}
	var err error
	p.GameName, p.TagLine, err = splitRiotID(riotID)
	return err
}

// emit prints v as JSON under --json, otherwise through table.
func emit[T any](w io.Writer, v T, table func(io.Writer, T)) error {
	if jsonOut {
		return report.WriteJSON(w, v)
	}
	table(w, v)
	return nil
}
