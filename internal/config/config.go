package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is the summarization backend used when none is configured.
const DefaultAPIURL = "http://localhost:7071/api"

// DefaultClientUserID is the identity the terminal client sends when none
// is configured.
const DefaultClientUserID = "demo-user"

type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV"  envDefault:"development"`

	// Summarization backend
	APIURL string `env:"API_URL"`

	// Redis, optional. Enables cross-replica realtime fan-out.
	RedisURL string `env:"REDIS_URL"`

	// Visitor identity
	SessionSecret string `env:"SESSION_SECRET"`
	UserID        string `env:"USER_ID"`

	// Views
	ViewTTL          time.Duration `env:"VIEW_TTL"            envDefault:"30m"`
	SubmitRatePerMin int           `env:"SUBMIT_RATE_PER_MIN" envDefault:"20"`
	SummaryWorkers   int           `env:"SUMMARY_WORKERS"     envDefault:"8"`

	// Frontend
	FrontendOrigins []string `env:"FRONTEND_ORIGIN" envDefault:"*" envSeparator:","`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`
}

// ClientConfig is what the terminal client reads from the environment.
type ClientConfig struct {
	APIURL   string `env:"API_URL"`
	UserID   string `env:"USER_ID"          envDefault:"demo-user"`
	Language string `env:"SUMMARY_LANGUAGE" envDefault:"English"`
}

// Load reads .env if present and then the process environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.APIURL = backendURL(cfg.APIURL)

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = uuid.NewString()
	}
	if cfg.ViewTTL <= 0 {
		return nil, fmt.Errorf("VIEW_TTL must be positive, got %s", cfg.ViewTTL)
	}
	if cfg.SubmitRatePerMin <= 0 {
		return nil, fmt.Errorf("SUBMIT_RATE_PER_MIN must be positive, got %d", cfg.SubmitRatePerMin)
	}
	if cfg.SummaryWorkers <= 0 {
		return nil, fmt.Errorf("SUMMARY_WORKERS must be positive, got %d", cfg.SummaryWorkers)
	}

	return &cfg, nil
}

// LoadClient reads the terminal client's settings.
func LoadClient() (ClientConfig, error) {
	godotenv.Load()

	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.APIURL = backendURL(cfg.APIURL)
	if strings.TrimSpace(cfg.UserID) == "" {
		cfg.UserID = DefaultClientUserID
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// backendURL falls back to the variable name the browser build used.
func backendURL(configured string) string {
	if configured != "" {
		return configured
	}
	return getEnvOrDefault("NEXT_PUBLIC_API_URL", DefaultAPIURL)
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
