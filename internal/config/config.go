package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage drivers selectable via STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"sanrentan"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Storage    Storage
	Postgres   Postgres
	Redis      Redis
	Security   Security
	Tournament Tournament
}

// Storage selects the persistence backend.
type Storage struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

// Postgres captures connection info for the SQL database.
// Fields are checked in Validate only when the postgres driver is active,
// so the memory driver can run without any PG_* variables set.
type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds ranking-cache configuration. Leave Addr empty to disable the
// cache and serve every ranking read straight from the store.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores the shared organizer secret gating mutating endpoints.
type Security struct {
	OrganizerSecret string `env:"ORGANIZER_SECRET,notEmpty"`
}

// Tournament groups event defaults.
type Tournament struct {
	DefaultPrompt   string        `env:"DEFAULT_QUESTION_PROMPT" envDefault:""`
	DefaultOptions  []string      `env:"DEFAULT_OPTION_LABELS" envSeparator:"," envDefault:""`
	RankingCacheTTL time.Duration `env:"RANKING_CACHE_TTL" envDefault:"3s"`
}

// Load parses environment variables into App config. Only ORGANIZER_SECRET
// is unconditionally required; Postgres settings are enforced by Validate
// when that driver is selected, and Redis stays optional throughout.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver-dependent requirements the env tags cannot express.
func (c *App) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.Database == "" {
			return fmt.Errorf("postgres driver requires PG_HOST, PG_USER and PG_DATABASE")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

// ConnString renders a pgx pool connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
