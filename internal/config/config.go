package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config mirrors config/config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the admin/read HTTP API.
type ServerConfig struct {
	Port  int    `mapstructure:"port"`
	Mode  string `mapstructure:"mode"` // gin mode: debug/release/test
	Pprof bool   `mapstructure:"pprof"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent/error/warn/info
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// ScraperConfig configures the upstream site, the request budget and retries.
type ScraperConfig struct {
	Source            string          `mapstructure:"source"` // registered LeagueSource name
	BaseURL           string          `mapstructure:"base_url"`
	VenueID           int64           `mapstructure:"venue_id"`
	Paths             PathsConfig     `mapstructure:"paths"`
	RequestsPerSecond float64         `mapstructure:"requests_per_second"`
	MaxConcurrent     int             `mapstructure:"max_concurrent"`
	Timeout           time.Duration   `mapstructure:"timeout"`
	MaxRetries        int             `mapstructure:"max_retries"`
	RetryBaseDelay    time.Duration   `mapstructure:"retry_base_delay"`
	RetryMaxDelay     time.Duration   `mapstructure:"retry_max_delay"`
	UserAgent         string          `mapstructure:"user_agent"`
	Proxy             string          `mapstructure:"proxy"`
	RegionKeywords    []RegionKeyword `mapstructure:"region_keywords"`
}

// PathsConfig holds the endpoint path of each page type, relative to BaseURL.
type PathsConfig struct {
	LeagueList string `mapstructure:"league_list"`
	Standings  string `mapstructure:"standings"`
	Fixtures   string `mapstructure:"fixtures"`
	Statistics string `mapstructure:"statistics"`
	Team       string `mapstructure:"team"`
}

// RegionKeyword maps a substring of a league name to a region label.
type RegionKeyword struct {
	Keyword string `mapstructure:"keyword"`
	Region  string `mapstructure:"region"`
}

// SyncConfig configures the orchestrator.
type SyncConfig struct {
	// CurrentSeasonID pins the current season by upstream id; 0 defers to the page marker
	// and then to CurrentSeasonLabels.
	CurrentSeasonID     int64    `mapstructure:"current_season_id"`
	CurrentSeasonLabels []string `mapstructure:"current_season_labels"`
	IncludeStatistics   bool     `mapstructure:"include_statistics"`
	// Schedule is a cron expression for periodic full syncs in serve; empty disables it.
	Schedule string `mapstructure:"schedule"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text/json
}

// MinInterval is the minimum spacing between two request dispatches.
func (s ScraperConfig) MinInterval() time.Duration {
	if s.RequestsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / s.RequestsPerSecond)
}

// LoadConfig reads config/config.yaml (or path when non-empty); .env and environment
// variables override secrets.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("scraper.source", "leaguesite")
	v.SetDefault("scraper.paths.league_list", "/External/Fixtures/Default.aspx")
	v.SetDefault("scraper.paths.standings", "/External/Fixtures/Standings.aspx")
	v.SetDefault("scraper.paths.fixtures", "/External/Fixtures/Fixtures.aspx")
	v.SetDefault("scraper.paths.statistics", "/External/Fixtures/Statistics.aspx")
	v.SetDefault("scraper.paths.team", "/External/Fixtures/Team.aspx")
	v.SetDefault("scraper.requests_per_second", 1.0)
	v.SetDefault("scraper.max_concurrent", 2)
	v.SetDefault("scraper.timeout", 30*time.Second)
	v.SetDefault("scraper.max_retries", 3)
	v.SetDefault("scraper.retry_base_delay", time.Second)
	v.SetDefault("scraper.retry_max_delay", 10*time.Second)
	v.SetDefault("scraper.user_agent", "leaguesync/1.0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// overrideFromEnv lets secrets live outside config.yaml.
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SCRAPER_BASE_URL"); v != "" {
		cfg.Scraper.BaseURL = v
	}
	if v := os.Getenv("SCRAPER_PROXY"); v != "" {
		cfg.Scraper.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate rejects configurations the fetch client cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Scraper.BaseURL) == "" {
		problems = append(problems, "scraper.base_url is required")
	}
	if c.Scraper.MaxConcurrent <= 0 {
		problems = append(problems, "scraper.max_concurrent must be positive")
	}
	if c.Scraper.MaxRetries <= 0 {
		problems = append(problems, "scraper.max_retries must be positive")
	}
	if c.Scraper.RetryMaxDelay < c.Scraper.RetryBaseDelay {
		problems = append(problems, "scraper.retry_max_delay must not be below retry_base_delay")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
