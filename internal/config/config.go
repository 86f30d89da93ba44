package config

import (
	"errors"
	"fmt"
	"groceryscraper/internal/components/telemetry"
	"groceryscraper/internal/report"
	"groceryscraper/lib/configutil"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultFile is looked up from the cwd upwards when no explicit config path is given.
const DefaultFile = "scraper.json5"

// EnvPrefix prefixes every environment override, ex. SCRAPER_WORKERS.
const EnvPrefix = "scraper"

const (
	FormatJSON  = report.FormatJSON
	FormatTable = report.FormatTable
)

type Config struct {
	DefaultListingURL string `json:"default_listing_url" envconfig:"DEFAULT_LISTING_URL"`
	Workers           int    `json:"workers" envconfig:"WORKERS"`
	// FetchTimeout is a duration string, ex. "30s".
	FetchTimeout     string `json:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	UserAgent        string `json:"user_agent" envconfig:"USER_AGENT"`
	CloudflareBypass bool   `json:"cloudflare_bypass" envconfig:"CLOUDFLARE_BYPASS"`
	Format           string `json:"format" envconfig:"FORMAT"`

	Telemetry telemetry.Config `json:"telemetry" ignored:"true"`
}

func Default() Config {
	return Config{
		DefaultListingURL: "http://hiring-tests.s3-website-eu-west-1.amazonaws.com/2015_Developer_Scrape/5_products.html",
		Workers:           4,
		FetchTimeout:      "30s",
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		Format:            FormatJSON,
	}
}

// Load layers the configuration: defaults, then the JSON5 file at path (and its
// .local override), then a .env file in the cwd, then SCRAPER_* environment
// variables. An empty path searches for DefaultFile from the cwd upwards, a missing
// file is not an error. The result is not validated, callers apply their own
// overrides first.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path == "" {
		cfg, _, err = configutil.ReadRecursively(DefaultFile, Default())
	} else {
		cfg, err = configutil.ReadConfig(path, Default())
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	err = envconfig.Process(EnvPrefix, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	return cfg, nil
}

func (c Config) Timeout() time.Duration {
	timeout, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0
	}
	return timeout
}

func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	timeout, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		errs = append(errs, fmt.Errorf("fetch_timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.Format != FormatJSON && c.Format != FormatTable {
		errs = append(errs, fmt.Errorf("format must be %q or %q, got %q", FormatJSON, FormatTable, c.Format))
	}
	return errors.Join(errs...)
}
