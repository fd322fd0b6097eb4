package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
		Port int    `envconfig:"PORT" default:"3333"`
	}

	DB struct {
		// URL takes precedence over the individual parts below.
		URL      string `envconfig:"DATABASE_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Session struct {
		CookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"sessionId"`
		MaxAge     time.Duration `envconfig:"SESSION_MAX_AGE" default:"168h"`
		Secure     bool          `envconfig:"SESSION_SECURE" default:"false"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	RateLimit struct {
		RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
		Burst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
	}
}

func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Session.MaxAge <= 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", cfg.Session.MaxAge)
	}

	return &cfg, nil
}
