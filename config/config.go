package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/thm-registration/internal/imagestore"
	"github.com/farellandr/thm-registration/internal/sheets"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"production"`
	Port string `env:"PORT" envDefault:"5000"`

	DBDriver     string        `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	DBHost       string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string        `env:"DB_PORT" envDefault:"5432"`
	DBUser       string        `env:"DB_USER"`
	DBPassword   string        `env:"DB_PASSWORD"`
	DBName       string        `env:"DB_NAME"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"registrations.db"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

	ImgBBAPIKey        string        `env:"IMGBB_API_KEY"`
	ImgBBUploadURL     string        `env:"IMGBB_UPLOAD_URL" envDefault:"https://api.imgbb.com/1/upload"`
	ImageUploadTimeout time.Duration `env:"IMAGE_UPLOAD_TIMEOUT" envDefault:"30s"`

	GoogleSheetID             string        `env:"GOOGLE_SHEET_ID"`
	GoogleSheetTab            string        `env:"GOOGLE_SHEET_TAB" envDefault:"Sheet1"`
	GoogleServiceAccountEmail string        `env:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	GooglePrivateKey          string        `env:"GOOGLE_PRIVATE_KEY"`
	SheetsWorkers             int           `env:"SHEETS_WORKERS" envDefault:"2"`
	SheetsQueueSize           int           `env:"SHEETS_QUEUE_SIZE" envDefault:"256"`
	SheetsTimeout             time.Duration `env:"SHEETS_TIMEOUT" envDefault:"15s"`

	CORSOrigins       []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES" envDefault:"6291456"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

func (cfg *Config) ImageStore() imagestore.Config {
	return imagestore.Config{
		APIKey:   cfg.ImgBBAPIKey,
		Endpoint: cfg.ImgBBUploadURL,
		Timeout:  cfg.ImageUploadTimeout,
	}
}

func (cfg *Config) Sheets() sheets.GoogleConfig {
	return sheets.GoogleConfig{
		SpreadsheetID:       cfg.GoogleSheetID,
		Tab:                 cfg.GoogleSheetTab,
		ServiceAccountEmail: cfg.GoogleServiceAccountEmail,
		PrivateKey:          cfg.GooglePrivateKey,
	}
}

func (cfg *Config) MirrorOptions() sheets.Options {
	return sheets.Options{
		Workers:   cfg.SheetsWorkers,
		QueueSize: cfg.SheetsQueueSize,
		Timeout:   cfg.SheetsTimeout,
	}
}

func (cfg *Config) postgresDSN() string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

// InitDatabase opens the configured database. Migration is left to the
// registration store.
func InitDatabase(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.postgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		// The DSN carries the password; only the driver is reported.
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}
