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
	// Storage configuration
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./data/content-comb.db" description:"Path to the SQLite database file"`
	WorkflowsDir string `long:"workflows-dir" env:"WORKFLOWS_DIR" default:"./workflows" description:"Directory containing workflow configuration files"`

	// Calendar cache (disabled when REDIS_ADDR is empty)
	RedisAddr        string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the calendar cache (e.g., localhost:6379)"`
	CalendarCacheTTL int    `long:"calendar-cache-ttl" env:"CALENDAR_CACHE_TTL" default:"300" description:"Seconds a rendered calendar feed stays cached"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://content.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for workflow executions"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Content processing
	WebhookRate      float64 `long:"webhook-rate" env:"WEBHOOK_RATE" default:"2" description:"Maximum webhook requests per second per host"`
	OutlineLookahead int     `long:"outline-lookahead" env:"OUTLINE_LOOKAHEAD" default:"20" description:"Lines scanned after an outline heading for its instruction"`
	RenderCacheSize  int     `long:"render-cache-size" env:"RENDER_CACHE_SIZE" default:"256" description:"Number of rendered articles kept in memory"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Content Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Mexico_City)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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
		DBPath:            raw.DBPath,
		WorkflowsDir:      raw.WorkflowsDir,
		RedisAddr:         raw.RedisAddr,
		CalendarCacheTTL:  raw.CalendarCacheTTL,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		WebhookRate:       raw.WebhookRate,
		OutlineLookahead:  raw.OutlineLookahead,
		RenderCacheSize:   raw.RenderCacheSize,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.WebhookRate <= 0 {
		return nil, fmt.Errorf("webhook rate must be positive, got %v", cfg.WebhookRate)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
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

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
