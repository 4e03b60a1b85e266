package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Tally"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Currency string `envconfig:"CURRENCY" default:"INR"`
		SeedDemo bool   `envconfig:"SEED_DEMO" default:"false"`
	}

	HTTP struct {
		AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	Storage struct {
		Backend    string `envconfig:"DATA_BACKEND" default:"sqlite"`
		SQLitePath string `envconfig:"SQLITE_DB_PATH" default:"tally.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret string        `envconfig:"JWT_SECRET"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"tally"`
	}

	Sheets struct {
		SpreadsheetID      string `envconfig:"GOOGLE_SPREADSHEET_ID"`
		ServiceAccountFile string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`
		SheetName          string `envconfig:"GOOGLE_SHEET_NAME" default:"Transactions"`
	}
}

// ConnectionString returns the DSN of the configured backend.
func (c *Config) ConnectionString() string {
	if c.Storage.Backend == BackendSQLite {
		return c.Storage.SQLitePath
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Validate checks settings whose defaults cannot be guessed.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendMemory, BackendPostgres:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_DB_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATA_BACKEND %q", c.Storage.Backend))
	}

	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if c.Auth.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.ServiceAccountFile == "" {
		errs = append(errs, errors.New("GOOGLE_SERVICE_ACCOUNT_FILE is required when GOOGLE_SPREADSHEET_ID is set"))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
