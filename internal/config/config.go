package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"rift-rewind/internal/riot"
	"rift-rewind/internal/timeline"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvPaths are the .env locations tried, in order, by LoadEnv.
var EnvPaths = []string{".env", "../.env", "../../.env"}

// Config holds all service configuration.
type Config struct {
	Riot      RiotConfig         `toml:"riot"`
	Summary   SummaryConfig      `toml:"summary"`
	Store     StoreConfig        `toml:"store"`
	Bench     BenchConfig        `toml:"bench"`
	Server    ServerConfig       `toml:"server"`
	Notify    NotifyConfig       `toml:"notify"`
	LogLevel  string             `toml:"log_level"`
	LogJSON   bool               `toml:"log_json"`
	BlobPath  string             `toml:"blob_storage_path"`
	FeatRules timeline.FeatRules `toml:"feat_rules"`
}

// RiotConfig selects the API key and routing.
type RiotConfig struct {
	APIKey   string `toml:"api_key"`
	Region   string `toml:"region"`   // regional routing: americas, europe, asia, sea
	Platform string `toml:"platform"` // platform host, derived from Region when empty
}

// SummaryConfig configures the text generator. An empty key disables it.
type SummaryConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`
}

// StoreConfig selects the lineup index backend.
type StoreConfig struct {
	Driver    string `toml:"driver"` // sqlite, libsql or postgres
	DSN       string `toml:"dsn"`
	AuthToken string `toml:"auth_token"`
}

// BenchConfig tunes peer sampling.
type BenchConfig struct {
	TierBump  int      `toml:"tier_bump"`
	SampleCap int      `toml:"sample_cap"`
	Workers   int      `toml:"workers"`
	Timeout   Duration `toml:"timeout"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Port            string `toml:"port"`
	CORSAllowOrigin string `toml:"cors_allow_origin"`
}

// NotifyConfig sets where crawl reports go. An empty URL disables them.
type NotifyConfig struct {
	WebhookURL string `toml:"webhook_url"`
}

// Duration decodes TOML strings like "25s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Riot:    RiotConfig{Region: "americas"},
		Summary: SummaryConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 1024},
		Store:   StoreConfig{Driver: "sqlite", DSN: "lineup_index.db"},
		Bench: BenchConfig{
			TierBump:  1,
			SampleCap: 40,
			Workers:   8,
			Timeout:   Duration{25 * time.Second},
		},
		Server:   ServerConfig{Port: "8080", CORSAllowOrigin: "*"},
		LogLevel: "info",
	}
}

// LoadEnv loads the first .env file found. It reports the path, or "" when
// none was found.
func LoadEnv() string {
	for _, path := range EnvPaths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the configuration: defaults, then the TOML file at path (or
// $RIFT_CONFIG), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("RIFT_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Riot.Platform == "" {
		cfg.Riot.Platform = riot.PlatformForRegion(cfg.Riot.Region)
	}
	if len(cfg.FeatRules) == 0 {
		cfg.FeatRules = timeline.DefaultFeatRules
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Riot.APIKey, "RIOT_API_KEY")
	setString(&cfg.Riot.Region, "RIOT_REGION_ROUTING")
	setString(&cfg.Riot.Platform, "RIOT_PLATFORM")
	setString(&cfg.Summary.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Summary.Model, "MODEL_ID")
	setString(&cfg.Store.Driver, "LINEUP_STORE_DRIVER")
	setString(&cfg.Store.DSN, "LINEUP_STORE_DSN")
	setString(&cfg.Store.AuthToken, "TURSO_AUTH_TOKEN")
	setInt(&cfg.Bench.TierBump, "BENCH_TIER_BUMP")
	setInt(&cfg.Bench.SampleCap, "BENCH_SAMPLE_CAP")
	setInt(&cfg.Bench.Workers, "BENCH_WORKERS")
	if v := os.Getenv("BENCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Bench.Timeout.Duration = d
		} else {
			log.Printf("[Config] Ignoring BENCH_TIMEOUT=%q: %v", v, err)
		}
	}
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.CORSAllowOrigin, "CORS_ALLOW_ORIGIN")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("LOG_JSON"); v != "" {
		cfg.LogJSON = strings.EqualFold(v, "true") || v == "1"
	}
	setString(&cfg.BlobPath, "BLOB_STORAGE_PATH")
	setString(&cfg.Notify.WebhookURL, "DISCORD_WEBHOOK_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}
