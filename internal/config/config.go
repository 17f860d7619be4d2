package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledger_import/internal/config/connections/mongo"
	"ledger_import/internal/config/connections/postgres"
	"ledger_import/internal/config/connections/s3"
	"ledger_import/internal/config/connections/sheets"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type ServerOptions struct {
	Port     string `env:"SERVER_PORT" envDefault:"8070"`
	APIToken string `env:"API_TOKEN"`
	TempDir  string `env:"TEMP_DIR"`
}

type PostgresOptions struct {
	Host     string `env:"PG_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:"postgres"`
	Password string `env:"PG_PASSWORD" envDefault:"postgres"`
	DB       string `env:"PG_DB" envDefault:"ledger"`
	SSLMode  string `env:"PG_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"PG_MAX_CONNS" envDefault:"4"`
}

type MongoOptions struct {
	Enabled    bool   `env:"MONGO_ENABLED" envDefault:"true"`
	Scheme     string `env:"MONGO_SCHEME" envDefault:"mongodb"`
	User       string `env:"MONGO_USER" envDefault:"root"`
	Password   string `env:"MONGO_PASSWORD" envDefault:"secret"`
	Host       string `env:"MONGO_HOST" envDefault:"127.0.0.1"`
	Port       string `env:"MONGO_PORT" envDefault:"27017"`
	DB         string `env:"MONGO_DB" envDefault:"ledger_import"`
	AuthSource string `env:"MONGO_AUTH_SOURCE" envDefault:"admin"`
}

type S3Options struct {
	Enabled   bool   `env:"AWS_ENABLED" envDefault:"true"`
	Endpoint  string `env:"AWS_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID" envDefault:"minioadmin"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY" envDefault:"minioadmin"`
	Region    string `env:"AWS_DEFAULT_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"AWS_BUCKET" envDefault:"statements"`
	UseSSL    bool   `env:"AWS_USE_SSL" envDefault:"false"`
}

type SheetsOptions struct {
	CredentialsFile string   `env:"GOOGLE_CREDENTIALS_FILE"`
	SpreadsheetID   string   `env:"SHEETS_SPREADSHEET_ID"`
	Tabs            []string `env:"SHEETS_TABS" envSeparator:";" envDefault:"ИП входящие=ip_acts;ООО входящие=ooo_acts"`
}

type BotOptions struct {
	Token string `env:"TELEGRAM_TOKEN"`
	Debug bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`
}

type Options struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server   ServerOptions
	Postgres PostgresOptions
	Mongo    MongoOptions
	S3       S3Options
	Sheets   SheetsOptions
	Bot      BotOptions
}

// TabBinding maps a worksheet title to the acts table it replaces.
type TabBinding struct {
	Sheet string
	Table string
}

// Load reads .env (when present) and the process environment.
func Load() (*Options, error) {
	_ = godotenv.Load()

	var opts Options
	if err := env.Parse(&opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &opts, nil
}

// TabBindings parses SHEETS_TABS entries of the form "sheet=table", keeping order.
func (o SheetsOptions) TabBindings() ([]TabBinding, error) {
	out := make([]TabBinding, 0, len(o.Tabs))
	for _, raw := range o.Tabs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		sheet, table, ok := strings.Cut(raw, "=")
		sheet, table = strings.TrimSpace(sheet), strings.TrimSpace(table)
		if !ok || sheet == "" || table == "" {
			return nil, fmt.Errorf("bad SHEETS_TABS entry %q, want sheet=table", raw)
		}
		out = append(out, TabBinding{Sheet: sheet, Table: table})
	}
	if len(out) == 0 {
		return nil, errors.New("SHEETS_TABS is empty")
	}
	return out, nil
}

type Config struct {
	Options  *Options
	Postgres *postgres.Postgres
	Mongo    *mongo.Mongo
	S3       *s3.S3
}

// Init opens the connections every command needs. Mongo and S3 are
// skipped when disabled.
func Init(ctx context.Context, opts *Options) (*Config, error) {
	cfg := &Config{Options: opts}

	pg, err := postgres.NewConnection(ctx, postgres.ConnectionInfo{
		Host:     opts.Postgres.Host,
		Port:     opts.Postgres.Port,
		User:     opts.Postgres.User,
		Password: opts.Postgres.Password,
		DB:       opts.Postgres.DB,
		SSLMode:  opts.Postgres.SSLMode,
		MaxConns: opts.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	cfg.Postgres = pg

	if opts.Mongo.Enabled {
		mg, err := mongo.NewConnection(ctx, mongo.ConnectionInfo{
			Scheme:     opts.Mongo.Scheme,
			User:       opts.Mongo.User,
			Password:   opts.Mongo.Password,
			Host:       opts.Mongo.Host,
			Port:       opts.Mongo.Port,
			DB:         opts.Mongo.DB,
			AuthSource: opts.Mongo.AuthSource,
		})
		if err != nil {
			cfg.Close(ctx)
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		cfg.Mongo = mg
	}

	if opts.S3.Enabled {
		s3c, err := s3.NewConnection(s3.ConnectionInfo{
			Endpoint:  opts.S3.Endpoint,
			AccessKey: opts.S3.AccessKey,
			SecretKey: opts.S3.SecretKey,
			Region:    opts.S3.Region,
			Bucket:    opts.S3.Bucket,
			UseSSL:    opts.S3.UseSSL,
		})
		if err != nil {
			cfg.Close(ctx)
			return nil, fmt.Errorf("s3 connect: %w", err)
		}
		if err := s3c.EnsureBucket(ctx); err != nil {
			cfg.Close(ctx)
			return nil, fmt.Errorf("s3 ensure bucket: %w", err)
		}
		cfg.S3 = s3c
	}

	return cfg, nil
}

// Sheets opens the Google Sheets client; only the sync command needs it.
func (c *Config) Sheets(ctx context.Context) (*sheets.Sheets, error) {
	return sheets.NewConnection(ctx, sheets.ConnectionInfo{
		CredentialsFile: c.Options.Sheets.CredentialsFile,
		SpreadsheetID:   c.Options.Sheets.SpreadsheetID,
	})
}

func (c *Config) CheckConnections(ctx context.Context) error {
	var errs []error

	if c.Postgres == nil || c.Postgres.Pool == nil {
		errs = append(errs, errors.New("postgres not initialized"))
	} else if err := c.Postgres.Pool.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("postgres ping failed: %w", err))
	}

	if c.Options.Mongo.Enabled {
		if c.Mongo == nil || c.Mongo.Client == nil {
			errs = append(errs, errors.New("mongo not initialized"))
		} else if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
		}
	}

	if c.Options.S3.Enabled {
		if c.S3 == nil || c.S3.Client == nil {
			errs = append(errs, errors.New("s3 not initialized"))
		} else if ok, err := c.S3.Client.BucketExists(ctx, c.S3.Bucket); err != nil {
			errs = append(errs, fmt.Errorf("s3 bucket check failed: %w", err))
		} else if !ok {
			errs = append(errs, fmt.Errorf("s3 bucket %q not found", c.S3.Bucket))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Close(ctx context.Context) {
	c.Postgres.Close()
	_ = c.Mongo.Close(ctx)
}
