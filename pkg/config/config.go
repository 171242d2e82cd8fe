package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ScraperConfig holds general scraper settings.
type ScraperConfig struct {
	Workers           string        `yaml:"workers"`
	Headless          bool          `yaml:"headless"`
	Fetcher           string        `yaml:"fetcher"` // http | browser
	UserAgent         string        `yaml:"user_agent"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
}

// BestBuyConfig holds settings specific to Best Buy.
type BestBuyConfig struct {
	ImageBaseURL   string `yaml:"image_base_url"`
	InputPath      string `yaml:"input_path"`
	OutputTextPath string `yaml:"output_text_path"`
	OutputJSONPath string `yaml:"output_json_path"`
}

// MacysConfig holds settings specific to Macy's.
type MacysConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIURL         string `yaml:"api_url"`
	ImageBaseURL   string `yaml:"image_base_url"`
	InputPath      string `yaml:"input_path"`
	ListingPath    string `yaml:"listing_path"`
	OutputJSONPath string `yaml:"output_json_path"`
	Limit          int    `yaml:"limit"`
}

// CacheConfig configures the optional redis page cache. Empty Addr disables it.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Env      string        `yaml:"env"`
	Scraper  ScraperConfig `yaml:"scraper"`
	BestBuy  BestBuyConfig `yaml:"bestbuy"`
	Macys    MacysConfig   `yaml:"macys"`
	Cache    CacheConfig   `yaml:"cache"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Server struct {
		Addr        string `yaml:"addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	cfg := &Config{
		Env: "prod",
		Scraper: ScraperConfig{
			Workers:           "auto",
			Headless:          true,
			Fetcher:           "http",
			UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.3 Safari/605.1.15",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
		},
		BestBuy: BestBuyConfig{
			ImageBaseURL:   "https://pisces.bbystatic.com/image2/BestBuy_US/images/products/",
			InputPath:      "data/bestbuy_products_to_scrape.txt",
			OutputTextPath: "data/bestbuy_scraped.txt",
			OutputJSONPath: "data/bestbuy_scraped.json",
		},
		Macys: MacysConfig{
			BaseURL:        "https://www.macys.com",
			APIURL:         "https://www.macys.com/xapi/digital/v1/product",
			ImageBaseURL:   "https://slimages.macysassets.com/is/image/MCY/products/",
			InputPath:      "data/macys_products_to_scrape.txt",
			ListingPath:    "data/macys_product_pages.txt",
			OutputJSONPath: "data/macys_scraped.json",
		},
		Cache: CacheConfig{TTL: 24 * time.Hour},
	}
	cfg.Database.Path = "products.db"
	cfg.Server.Addr = ":8080"
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads filepath over the defaults, then applies environment
// overrides (a .env file next to the binary is loaded first if present).
// A missing config file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", filepath, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config %s: %w", filepath, err)
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("APP_ENV", &cfg.Env)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("SCRAPER_FETCHER", &cfg.Scraper.Fetcher)
	setString("SCRAPER_WORKERS", &cfg.Scraper.Workers)
	setString("REDIS_ADDR", &cfg.Cache.Addr)
	setString("REDIS_PASSWORD", &cfg.Cache.Password)
	setString("DATABASE_PATH", &cfg.Database.Path)
	setString("SERVER_ADDR", &cfg.Server.Addr)
	setString("METRICS_ADDR", &cfg.Server.MetricsAddr)
}

// Validate rejects settings the scrapers cannot run with.
func (c *Config) Validate() error {
	switch c.Scraper.Fetcher {
	case "http", "browser":
	default:
		return fmt.Errorf("unknown fetcher %q (want http or browser)", c.Scraper.Fetcher)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got %s", c.Scraper.Timeout)
	}
	if c.Macys.Limit < 0 {
		return fmt.Errorf("macys limit must not be negative, got %d", c.Macys.Limit)
	}
	return nil
}
