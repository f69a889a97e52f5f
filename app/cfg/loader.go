package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Scrape sources
	SourceURL      string `long:"source-url" env:"SOURCE_URL" default:"https://halkarz.com/" description:"IPO index page URL"`
	DraftURL       string `long:"draft-url" env:"DRAFT_URL" default:"https://halkarz.com/k/taslak/" description:"Draft IPO category page URL"`
	FeedURL        string `long:"feed-url" env:"FEED_URL" default:"https://halkarz.com/feed/" description:"RSS feed URL used as a second listing discovery channel (empty disables)"`
	DividendURL    string `long:"dividend-url" env:"DIVIDEND_URL" default:"https://halkarz.com/api/temettu" description:"Dividend calendar JSON feed URL"`
	TargetPriceURL string `long:"target-price-url" env:"TARGET_PRICE_URL" default:"https://halkarz.com/api/hedef-fiyat" description:"Target price JSON feed URL"`
	Referer        string `long:"referer" env:"REFERER" description:"Referer header sent to the JSON feed endpoints (optional)"`

	// Output locations
	DataDir     string `long:"data-dir" env:"DATA_DIR" default:"./public" description:"Directory holding the published JSON/XML artifacts"`
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"./sources/sources.yml" description:"Catalog source descriptor file"`
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/pipeline.db" description:"SQLite database path for the run ledger"`

	// Pipeline tuning
	WorkerCount        int  `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Concurrent detail-page fetches (1 reproduces the sequential reference behavior)"`
	CheckpointInterval int  `long:"checkpoint-interval" env:"CHECKPOINT_INTERVAL" default:"5" description:"Write the live dataset after every N completed listings"`
	RetentionDays      int  `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days to keep dated dividend snapshots"`
	ArchiveOverwrite   bool `long:"archive-overwrite" env:"ARCHIVE_OVERWRITE" description:"Replace yearly archive files instead of merging into them"`
	MaxActive          int  `long:"max-active" env:"MAX_ACTIVE" default:"4" description:"Maximum active listings to fetch details for"`
	MaxDrafts          int  `long:"max-drafts" env:"MAX_DRAFTS" default:"20" description:"Maximum draft listings to fetch details for"`

	// HTTP client
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0" description:"User agent string for HTTP requests"`
	Timeout   int    `long:"timeout" env:"TIMEOUT" default:"10" description:"Per-request timeout in seconds"`

	// Serve mode
	Serve             bool   `long:"serve" env:"SERVE" description:"Run the HTTP server and periodic scheduler instead of a one-shot batch"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve mode)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Seconds between pipeline runs (serve mode)"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authenticated endpoints (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"Europe/Istanbul" description:"Timezone for timestamps"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SourceURL:          raw.SourceURL,
		DraftURL:           raw.DraftURL,
		FeedURL:            raw.FeedURL,
		DividendURL:        raw.DividendURL,
		TargetPriceURL:     raw.TargetPriceURL,
		Referer:            raw.Referer,
		DataDir:            raw.DataDir,
		SourcesFile:        raw.SourcesFile,
		DBPath:             raw.DBPath,
		WorkerCount:        raw.WorkerCount,
		CheckpointInterval: raw.CheckpointInterval,
		RetentionDays:      raw.RetentionDays,
		ArchiveOverwrite:   raw.ArchiveOverwrite,
		MaxActive:          raw.MaxActive,
		MaxDrafts:          raw.MaxDrafts,
		UserAgent:          raw.UserAgent,
		Timeout:            raw.Timeout,
		Serve:              raw.Serve,
		Port:               raw.Port,
		SchedulerInterval:  raw.SchedulerInterval,
		APIAccessKey:       raw.APIAccessKey,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.CheckpointInterval < 1 {
		cfg.CheckpointInterval = 1
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Used by tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
