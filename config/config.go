package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	Env    string `env:"APP_ENV" envDefault:"development"`
	Domain string `env:"DOMAIN" envDefault:"http://localhost:8080"`

	DBFile          string `env:"SQLITE_DB" envDefault:"./data/velastudio.db"`
	AnalyticsDBFile string `env:"ANALYTICS_DB"` // empty disables analytics

	// Seed credentials for the single admin account. Admin accounts are only
	// ever created here, never through the API.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Demo page content is only seeded when this flag is set in development.
	SeedDemoContent bool `env:"SEED_DEMO_CONTENT" envDefault:"false"`

	CacheDir        string `env:"CACHE_DIR" envDefault:"./cache"`
	CacheTTLSeconds int    `env:"CACHE_TTL" envDefault:"300"`

	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser         string `env:"SMTP_USER"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	SMTPFrom         string `env:"SMTP_FROM"`
	ContactRecipient string `env:"CONTACT_RECIPIENT"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr returns the listen address in :port format.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
