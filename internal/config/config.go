// Package config provides configuration management for the cocktail-search
// commands and services.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/cocktail-search/internal/logger"
)

// Default configuration values.
const (
	defaultServerPort        = 8080
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultRequestTimeout    = 30 * time.Second
	defaultSearchTimeout     = 10 * time.Second
	defaultParallelism       = 2
	defaultRateLimit         = 2 * time.Second
	defaultHTTPRetryMax      = 3
	defaultHTTPRetryDelay    = 5 * time.Second
	defaultUserAgent         = "cocktail-search/1.0"
	defaultESAddress         = "http://127.0.0.1:9200"
	defaultESIndex           = "cocktails"
	defaultESMaxRetries      = 3
	defaultSourcesFile       = "sources.yml"
	defaultSynonymsFile      = "synonyms.txt"
	defaultRecordsFile       = "recipes.jsonl"
	defaultEnvironment       = "development"
)

// Config is the root configuration shared by all commands.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Crawler       CrawlerConfig       `mapstructure:"crawler"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Server        ServerConfig        `mapstructure:"server"`
	Logging       logger.Config       `mapstructure:"logging"`
}

// AppConfig represents application-level settings.
type AppConfig struct {
	// Name is the name of the application.
	Name string `mapstructure:"name"`
	// Environment is the application environment (development, staging, production).
	Environment string `mapstructure:"environment"`
	// Debug indicates whether debug mode is enabled.
	Debug bool `mapstructure:"debug"`
}

// CrawlerConfig holds crawl-specific settings.
type CrawlerConfig struct {
	// SourcesFile is the path to the site-rule configuration file.
	SourcesFile string `mapstructure:"sources_file"`
	// RecordsFile is the path the crawl writes newline-delimited records to.
	RecordsFile string `mapstructure:"records_file"`
	// UserAgent is sent on every request.
	UserAgent string `mapstructure:"user_agent"`
	// RequestTimeout bounds a single fetch.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RateLimit is the default per-host delay between requests.
	RateLimit time.Duration `mapstructure:"rate_limit"`
	// Parallelism bounds in-flight requests against a single host.
	Parallelism int `mapstructure:"parallelism"`
	// HTTPRetryMax bounds retries of transient fetch errors per URL.
	HTTPRetryMax int `mapstructure:"http_retry_max"`
	// HTTPRetryDelay is the wait between retries of the same URL.
	HTTPRetryDelay time.Duration `mapstructure:"http_retry_delay"`
	// RespectRobotsTxt toggles robots.txt handling.
	RespectRobotsTxt bool `mapstructure:"respect_robots_txt"`
}

// ElasticsearchConfig holds index engine connection settings.
type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	Index      string   `mapstructure:"index"`
	MaxRetries int      `mapstructure:"max_retries"`
	// SynonymsFile is the path to the `phrase > expansion` table used when
	// building the searchable ingredients field.
	SynonymsFile string `mapstructure:"synonyms_file"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// SearchTimeout wraps both index round-trips of one search request.
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
}

// setDefaults registers every default value with viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cocktail-search")
	v.SetDefault("app.environment", defaultEnvironment)
	v.SetDefault("app.debug", false)

	v.SetDefault("crawler.sources_file", defaultSourcesFile)
	v.SetDefault("crawler.records_file", defaultRecordsFile)
	v.SetDefault("crawler.user_agent", defaultUserAgent)
	v.SetDefault("crawler.request_timeout", defaultRequestTimeout)
	v.SetDefault("crawler.rate_limit", defaultRateLimit)
	v.SetDefault("crawler.parallelism", defaultParallelism)
	v.SetDefault("crawler.http_retry_max", defaultHTTPRetryMax)
	v.SetDefault("crawler.http_retry_delay", defaultHTTPRetryDelay)
	v.SetDefault("crawler.respect_robots_txt", true)

	v.SetDefault("elasticsearch.addresses", []string{defaultESAddress})
	v.SetDefault("elasticsearch.index", defaultESIndex)
	v.SetDefault("elasticsearch.max_retries", defaultESMaxRetries)
	v.SetDefault("elasticsearch.synonyms_file", defaultSynonymsFile)

	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultReadTimeout)
	v.SetDefault("server.write_timeout", defaultWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultIdleTimeout)
	v.SetDefault("server.search_timeout", defaultSearchTimeout)

	v.SetDefault("logging.level", logger.DefaultLevel)
}

// Load reads the configuration from the given file (or the default search
// path when empty), applies environment overrides, and validates the result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	_ = v.BindEnv("elasticsearch.addresses", "ELASTICSEARCH_URL")
	_ = v.BindEnv("elasticsearch.username", "ELASTICSEARCH_USERNAME")
	_ = v.BindEnv("elasticsearch.password", "ELASTICSEARCH_PASSWORD")
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("app.debug", "APP_DEBUG")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine; defaults and env cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values no command can run with.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.App.Environment)
	}
	if len(c.Elasticsearch.Addresses) == 0 {
		return errors.New("at least one elasticsearch address is required")
	}
	if c.Elasticsearch.Index == "" {
		return errors.New("elasticsearch index name is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Crawler.Parallelism <= 0 {
		return errors.New("crawler parallelism must be positive")
	}
	if c.Crawler.HTTPRetryMax < 0 {
		return errors.New("crawler http_retry_max must be non-negative")
	}
	return nil
}
