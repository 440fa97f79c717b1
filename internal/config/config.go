package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	defaultDatabaseURL = "postgres://localhost:5432/roundbot?sslmode=disable"
)

type Config struct {
	Token          string
	AdminIDs       map[string]struct{}
	GuildID        string
	Store          string
	DatabaseURL    string
	MigrationsPath string
	Locale         string
	Timezone       string
	RoundWindow    time.Duration
	TickInterval   time.Duration
	LogLevel       zerolog.Level
	LogFormat      string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Token:     get("TOKEN", ""),
		AdminIDs:  parseIDs(get("ADMIN_IDS", "")),
		GuildID:   get("GUILD_ID", ""),
		Store:     strings.ToLower(get("STORE", StorePostgres)),
		Locale:    get("LOCALE", "en"),
		Timezone:  get("TIMEZONE", "UTC"),
		LogFormat: strings.ToLower(get("LOG_FORMAT", "json")),
	}
	cfg.DatabaseURL = get("DATABASE_URL", defaultDatabaseURL)
	cfg.MigrationsPath = "migrations"
	if v, ok := lookup("MIGRATIONS_PATH"); ok {
		cfg.MigrationsPath = strings.TrimSpace(v)
	}

	var err error
	if cfg.RoundWindow, err = time.ParseDuration(get("ROUND_WINDOW", "10m")); err != nil {
		return nil, fmt.Errorf("config: ROUND_WINDOW: %w", err)
	}
	if cfg.TickInterval, err = time.ParseDuration(get("TICK_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("config: TICK_INTERVAL: %w", err)
	}
	if cfg.LogLevel, err = zerolog.ParseLevel(get("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseIDs(raw string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// IsAdmin reports whether userID may operate events.
func (c *Config) IsAdmin(userID string) bool {
	_, ok := c.AdminIDs[userID]
	return ok
}

// Ticks is the number of countdown renders in a full window.
func (c *Config) Ticks() int {
	return int(c.RoundWindow / c.TickInterval)
}

func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: TOKEN is required")
	}
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("config: ADMIN_IDS is required")
	}
	for id := range c.AdminIDs {
		if !isSnowflake(id) {
			return fmt.Errorf("config: ADMIN_IDS entry %q is not a Discord user id", id)
		}
	}
	if c.GuildID != "" && !isSnowflake(c.GuildID) {
		return fmt.Errorf("config: GUILD_ID must be a Discord guild id")
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	default:
		return fmt.Errorf("config: STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: TIMEZONE: %w", err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: TICK_INTERVAL must be positive")
	}
	if c.RoundWindow < c.TickInterval || c.RoundWindow%c.TickInterval != 0 {
		return fmt.Errorf("config: ROUND_WINDOW (%s) must be a positive multiple of TICK_INTERVAL (%s)", c.RoundWindow, c.TickInterval)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("config: LOG_FORMAT must be json or console")
	}
	return nil
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
