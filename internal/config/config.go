// Package config loads the quotewidget server configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted in QW_STORE.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string // QW_STORE (default "sqlite"; postgres|sqlite|memory)
	DatabaseURL string // QW_DATABASE_URL (required for postgres)
	SQLitePath  string // QW_SQLITE_PATH (default "quotewidget.db")
	GRPCAddr    string // QW_GRPC_ADDR (default ":9090")
	HTTPAddr    string // QW_HTTP_ADDR (default ":8080")
	NATSURL     string // QW_NATS_URL (optional, empty = no NATS events)
	AuthToken   string // QW_AUTH_TOKEN (optional, empty = auth disabled)

	// Rendering inputs
	ThemeFile      string // QW_THEME_FILE (TOML palette; empty = built-in)
	QuotesFile     string // QW_QUOTES_FILE (JSON corpus on disk)
	QuotesS3Bucket string // QW_QUOTES_S3_BUCKET (corpus object; wins over QW_QUOTES_FILE)
	QuotesS3Key    string // QW_QUOTES_S3_KEY (default "quotes.json")

	// Shared S3 settings
	S3Region   string // QW_S3_REGION (default "us-east-1")
	S3Endpoint string // QW_S3_ENDPOINT (custom endpoint for MinIO)

	// Backup settings
	BackupInterval  time.Duration // QW_BACKUP_INTERVAL (default 3m; 0 = disabled)
	BackupS3Bucket  string        // QW_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Key     string        // QW_BACKUP_S3_KEY (default "quotewidget/backup.jsonl")
	BackupGitRepo   string        // QW_BACKUP_GIT_REPO (enables git when set; path to clone)
	BackupGitFile   string        // QW_BACKUP_GIT_FILE (default "quotewidget.jsonl")
	BackupGitBranch string        // QW_BACKUP_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		Store:           envOrDefault("QW_STORE", StoreSQLite),
		DatabaseURL:     os.Getenv("QW_DATABASE_URL"),
		SQLitePath:      envOrDefault("QW_SQLITE_PATH", "quotewidget.db"),
		GRPCAddr:        envOrDefault("QW_GRPC_ADDR", ":9090"),
		HTTPAddr:        envOrDefault("QW_HTTP_ADDR", ":8080"),
		NATSURL:         os.Getenv("QW_NATS_URL"),
		AuthToken:       os.Getenv("QW_AUTH_TOKEN"),
		ThemeFile:       os.Getenv("QW_THEME_FILE"),
		QuotesFile:      os.Getenv("QW_QUOTES_FILE"),
		QuotesS3Bucket:  os.Getenv("QW_QUOTES_S3_BUCKET"),
		QuotesS3Key:     envOrDefault("QW_QUOTES_S3_KEY", "quotes.json"),
		S3Region:        envOrDefault("QW_S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("QW_S3_ENDPOINT"),
		BackupS3Bucket:  os.Getenv("QW_BACKUP_S3_BUCKET"),
		BackupS3Key:     envOrDefault("QW_BACKUP_S3_KEY", "quotewidget/backup.jsonl"),
		BackupGitRepo:   os.Getenv("QW_BACKUP_GIT_REPO"),
		BackupGitFile:   envOrDefault("QW_BACKUP_GIT_FILE", "quotewidget.jsonl"),
		BackupGitBranch: envOrDefault("QW_BACKUP_GIT_BRANCH", "main"),
	}

	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("QW_DATABASE_URL is required when QW_STORE=%s", StorePostgres)
		}
	case StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("QW_STORE: unknown store %q", c.Store)
	}

	intervalStr := envOrDefault("QW_BACKUP_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("QW_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}

	return c, nil
}

// BackupEnabled reports whether a backup destination and interval are set.
func (c *Config) BackupEnabled() bool {
	return c.BackupInterval > 0 && (c.BackupS3Bucket != "" || c.BackupGitRepo != "")
}

// LoadDotEnv loads variables from the .env file at path into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
