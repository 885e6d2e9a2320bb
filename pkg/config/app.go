package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/regdesk/pkg/auth"
	"github.com/dmitrymomot/regdesk/pkg/file"
	"github.com/dmitrymomot/regdesk/pkg/httpserver"
	"github.com/dmitrymomot/regdesk/pkg/mongo"
	"github.com/dmitrymomot/regdesk/pkg/pg"
	"github.com/dmitrymomot/regdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/regdesk/pkg/redis"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/pkg/sheets"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// App holds service-wide settings.
type App struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	Name         string `env:"APP_NAME" envDefault:"regdesk"`
	SigningKey   string `env:"APP_SIGNING_KEY"`
	LogLevel     string `env:"APP_LOG_LEVEL" envDefault:"info"`
	EquipmentFee int    `env:"APP_EQUIPMENT_FEE" envDefault:"200"`
	LedgerPolicy string `env:"APP_LEDGER_POLICY" envDefault:"single"`
	PublicURL    string `env:"APP_PUBLIC_URL" envDefault:"http://localhost:8080"`
}

// Store selects and tunes the record backend.
type Store struct {
	Backend            string        `env:"STORE_BACKEND" envDefault:"memory"`
	Provisioning       string        `env:"STORE_PROVISIONING" envDefault:"strict"`
	CacheTTL           time.Duration `env:"STORE_CACHE_TTL" envDefault:"60s"`
	UsersTable         string        `env:"STORE_USERS_TABLE" envDefault:"Billing_Users"`
	RegistrationsTable string        `env:"STORE_REGISTRATIONS_TABLE" envDefault:"Workshop_Registrations"`
}

// Config is the complete service configuration.
type Config struct {
	App       App
	Google    auth.GoogleOAuthConfig
	Store     Store
	Sheets    sheets.Config
	Postgres  pg.Config
	Mongo     mongo.Config
	Redis     redis.Config
	Session   session.Config
	Avatar    file.Config
	HTTP      httpserver.Config
	RateLimit ratelimiter.Config
}

// FromEnv loads and validates Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	if strings.TrimSpace(c.App.SigningKey) == "" {
		return ErrMissingSecret
	}
	if c.App.EquipmentFee < 0 {
		return fmt.Errorf("%w: APP_EQUIPMENT_FEE must not be negative", ErrInvalidConfig)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("%w: SHEETS_SPREADSHEET_ID is required for the sheets backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.Postgres.ConnectionString == "" {
			return fmt.Errorf("%w: PG_CONN_URL is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendMongo:
		if c.Mongo.ConnectionURL == "" {
			return fmt.Errorf("%w: MONGODB_URL is required for the mongo backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", ErrInvalidConfig, c.Store.Backend)
	}

	if c.RateLimit.Enabled() && c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be positive", ErrInvalidConfig)
	}

	if c.Store.UsersTable == "" || c.Store.RegistrationsTable == "" {
		return fmt.Errorf("%w: table names must not be empty", ErrInvalidConfig)
	}
	return nil
}
