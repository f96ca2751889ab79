package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/i474232898/coronaboard-data/internal/logger"
	"github.com/i474232898/coronaboard-data/internal/stats"
)

type AppConfig struct {
	// APIBaseURL is the collector API serving /global-stats.
	APIBaseURL string `validate:"omitempty,url"`

	// InputFile, when set, replaces the API with a local JSON dump.
	InputFile string

	HTTPTimeout time.Duration `validate:"gt=0"`
	CacheTTL    time.Duration `validate:"gte=0"`

	// AnchorDate pins the reference date (YYYY-MM-DD). When empty the
	// reference date is the clock minus DataLag.
	AnchorDate string         `validate:"omitempty,datetime=2006-01-02"`
	DataLag    time.Duration  `validate:"gte=0"`
	Location   *time.Location `validate:"required"`

	// RefreshCron takes precedence over RefreshInterval when set.
	RefreshCron     string
	RefreshInterval time.Duration `validate:"gte=1m"`
	RunOnStart      bool

	OutputDir        string
	SQLitePath       string
	WriteConcurrency int `validate:"gte=1,lte=256"`

	CountryInfoPath string
	NoticePath      string

	// In-memory dashboard retention.
	StoreMaxHistory int           // max number of dashboards kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of dashboards (0 = unlimited)

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text plain"`

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIBaseURL = getenvDefault("CORONABOARD_API_BASE_URL", "http://localhost:8080")
	cfg.InputFile = os.Getenv("INPUT_FILE")
	cfg.AnchorDate = os.Getenv("ANCHOR_DATE")
	cfg.RefreshCron = os.Getenv("REFRESH_CRON")
	cfg.RunOnStart = getenvBool("RUN_ON_START", false)
	cfg.OutputDir = getenvDefault("OUTPUT_DIR", "static/generated")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.WriteConcurrency = getenvInt("WRITE_CONCURRENCY", 8)
	cfg.CountryInfoPath = getenvDefault("COUNTRY_INFO_PATH", "tools/downloaded/countryInfo.json")
	cfg.NoticePath = getenvDefault("NOTICE_PATH", "tools/downloaded/notice.json")
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "text")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("PROVIDER_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.DataLag, err = getenvDuration("DATA_LAG", "0s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "168h"); err != nil {
		return nil, err
	}

	tz := getenvDefault("DATA_TIMEZONE", "Asia/Seoul")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid DATA_TIMEZONE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the cron expression.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.APIBaseURL == "" && c.InputFile == "" {
		return fmt.Errorf("one of CORONABOARD_API_BASE_URL or INPUT_FILE is required")
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("invalid REFRESH_CRON: %w", err)
		}
	}
	return nil
}

// Anchor returns the reference instant for a refresh started at now.
func (c *AppConfig) Anchor(now time.Time) (time.Time, error) {
	if c.AnchorDate != "" {
		return stats.ParseAnchor(c.AnchorDate)
	}
	return now.Add(-c.DataLag), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
