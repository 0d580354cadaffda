package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// BrowserConfig selects and tunes the page renderer.
type BrowserConfig struct {
	// Renderer is "playwright" (headless Chromium) or "static" (plain HTTP).
	Renderer              string `yaml:"renderer" mapstructure:"renderer"`
	Headless              bool   `yaml:"headless" mapstructure:"headless"`
	NavigationTimeoutSecs int    `yaml:"navigation_timeout_secs" mapstructure:"navigation_timeout_secs"`
	ActionTimeoutSecs     int    `yaml:"action_timeout_secs" mapstructure:"action_timeout_secs"`
	UserAgent             string `yaml:"user_agent" mapstructure:"user_agent"`
	Locale                string `yaml:"locale" mapstructure:"locale"`
}

// ScrapeConfig configures page handling and field selectors.
type ScrapeConfig struct {
	SettleMS       int            `yaml:"settle_ms" mapstructure:"settle_ms"`
	ActionDelayMS  int            `yaml:"action_delay_ms" mapstructure:"action_delay_ms"`
	ScrollAttempts int            `yaml:"scroll_attempts" mapstructure:"scroll_attempts"`
	ScrollDelayMS  int            `yaml:"scroll_delay_ms" mapstructure:"scroll_delay_ms"`
	ScrollDelta    float64        `yaml:"scroll_delta" mapstructure:"scroll_delta"`
	StaleScrolls   int            `yaml:"stale_scrolls" mapstructure:"stale_scrolls"`
	ScrollForMore  bool           `yaml:"scroll_for_more" mapstructure:"scroll_for_more"`
	MaxReviews     int            `yaml:"max_reviews" mapstructure:"max_reviews"`
	ItemSelectors  []string       `yaml:"item_selectors" mapstructure:"item_selectors"`
	FeedSelectors  []string       `yaml:"feed_selectors" mapstructure:"feed_selectors"`
	Selectors      SelectorConfig `yaml:"selectors" mapstructure:"selectors"`
}

// SelectorConfig overrides the per-field extractor selectors.
type SelectorConfig struct {
	Rating []string `yaml:"rating" mapstructure:"rating"`
	Name   []string `yaml:"name" mapstructure:"name"`
	Text   []string `yaml:"text" mapstructure:"text"`
	Date   []string `yaml:"date" mapstructure:"date"`
}

// Settle returns the post-navigation settle delay.
func (c ScrapeConfig) Settle() time.Duration { return time.Duration(c.SettleMS) * time.Millisecond }

// ActionDelay returns the wait after consent and tab clicks.
func (c ScrapeConfig) ActionDelay() time.Duration {
	return time.Duration(c.ActionDelayMS) * time.Millisecond
}

// ScrollDelay returns the wait between feed scrolls.
func (c ScrapeConfig) ScrollDelay() time.Duration {
	return time.Duration(c.ScrollDelayMS) * time.Millisecond
}

// BatchConfig configures batch scraping.
type BatchConfig struct {
	MaxConcurrent       int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RequestsPerMinute   int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	BreakerThreshold    int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ScrapeTimeout  int      `yaml:"scrape_timeout_secs" mapstructure:"scrape_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path looks
// for an optional config.yaml in the working directory; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("REVIEWINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "review-intel.db")
	v.SetDefault("browser.renderer", "playwright")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout_secs", 60)
	v.SetDefault("browser.action_timeout_secs", 5)
	v.SetDefault("browser.locale", "en-US")
	v.SetDefault("scrape.settle_ms", 3000)
	v.SetDefault("scrape.action_delay_ms", 1000)
	v.SetDefault("scrape.scroll_attempts", 10)
	v.SetDefault("scrape.scroll_delay_ms", 1500)
	v.SetDefault("scrape.scroll_delta", 2000)
	v.SetDefault("scrape.stale_scrolls", 2)
	v.SetDefault("scrape.max_reviews", 50)
	v.SetDefault("batch.max_concurrent", 2)
	v.SetDefault("batch.requests_per_minute", 6)
	v.SetDefault("batch.breaker_threshold", 3)
	v.SetDefault("batch.breaker_cooldown_secs", 300)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.scrape_timeout_secs", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
// mode is one of scrape, analyze, batch or serve.
func (c *Config) Validate(mode string) error {
	var errs []string

	// Same names store.Open accepts; empty means sqlite.
	switch strings.ToLower(c.Store.Driver) {
	case "", "sqlite", "postgres", "postgresql":
	default:
		errs = append(errs, `store.driver must be "sqlite", "postgres" or "postgresql"`)
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case "analyze":
	case "scrape", "batch", "serve":
		switch c.Browser.Renderer {
		case "playwright", "static":
		default:
			errs = append(errs, `browser.renderer must be "playwright" or "static"`)
		}
		if c.Scrape.MaxReviews < 0 {
			errs = append(errs, "scrape.max_reviews must be >= 0")
		}
		if mode == "batch" || mode == "serve" {
			if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 10 {
				errs = append(errs, "batch.max_concurrent must be between 1 and 10")
			}
			if c.Batch.RequestsPerMinute < 0 {
				errs = append(errs, "batch.requests_per_minute must be >= 0")
			}
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
