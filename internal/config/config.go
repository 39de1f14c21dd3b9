package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Party source kinds.
const (
	PartySourceManifest  = "manifest"
	PartySourceDirectory = "directory"
	PartySourceDatabase  = "database"
)

// Party file parse failure policies.
const (
	ParseFailureStrict      = "strict"
	ParseFailurePlaceholder = "placeholder"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Access   AccessConfig
	Session  SessionConfig
	Database DatabaseConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	MaxUploadBytes int64
}

// DataConfig describes where docket data is read from.
type DataConfig struct {
	Dir             string
	ApplicationFile string
	PartySource     string
	PartyManifest   string
	PartyDir        string
	ParseFailure    string
	WatchFiles      bool
}

// AccessConfig holds the title-chain access allow-list.
type AccessConfig struct {
	Tokens []string
}

// SessionConfig holds session cache configuration.
type SessionConfig struct {
	TTL time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
// It is only used when party records are served from the database.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("APPLICATION_FILE", "application.json")
	v.SetDefault("PARTY_SOURCE", PartySourceManifest)
	v.SetDefault("PARTY_MANIFEST", "parties.yaml")
	v.SetDefault("PARTY_DIR", "parties")
	v.SetDefault("PARTY_PARSE_FAILURE", ParseFailureStrict)
	v.SetDefault("WATCH_FILES", false)
	v.SetDefault("ACCESS_TOKENS", "investor,demo,admin")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "minerals")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8501")

	// Bind environment variables
	v.AutomaticEnv()

	dataDir := v.GetString("DATA_DIR")

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Env:            v.GetString("ENV"),
			LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
		Data: DataConfig{
			Dir:             dataDir,
			ApplicationFile: resolvePath(dataDir, v.GetString("APPLICATION_FILE")),
			PartySource:     strings.ToLower(v.GetString("PARTY_SOURCE")),
			PartyManifest:   resolvePath(dataDir, v.GetString("PARTY_MANIFEST")),
			PartyDir:        resolvePath(dataDir, v.GetString("PARTY_DIR")),
			ParseFailure:    strings.ToLower(v.GetString("PARTY_PARSE_FAILURE")),
			WatchFiles:      v.GetBool("WATCH_FILES"),
		},
		Access: AccessConfig{
			Tokens: parseList(v.GetString("ACCESS_TOKENS"), true),
		},
		Session: SessionConfig{
			TTL: v.GetDuration("SESSION_TTL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseList(v.GetString("CORS_ORIGINS"), false),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be at least 1")
	}

	// Validate data config
	if c.Data.ApplicationFile == "" {
		return fmt.Errorf("APPLICATION_FILE is required")
	}
	switch c.Data.PartySource {
	case PartySourceManifest:
		if c.Data.PartyManifest == "" {
			return fmt.Errorf("PARTY_MANIFEST is required when PARTY_SOURCE is %s", PartySourceManifest)
		}
	case PartySourceDirectory:
		if c.Data.PartyDir == "" {
			return fmt.Errorf("PARTY_DIR is required when PARTY_SOURCE is %s", PartySourceDirectory)
		}
	case PartySourceDatabase:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("PARTY_SOURCE must be one of %s, %s, %s",
			PartySourceManifest, PartySourceDirectory, PartySourceDatabase)
	}
	if c.Data.ParseFailure != ParseFailureStrict && c.Data.ParseFailure != ParseFailurePlaceholder {
		return fmt.Errorf("PARTY_PARSE_FAILURE must be %s or %s", ParseFailureStrict, ParseFailurePlaceholder)
	}

	// Validate access config
	if len(c.Access.Tokens) == 0 {
		return fmt.Errorf("ACCESS_TOKENS is required")
	}

	// Validate session config
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// UsesDatabase reports whether party records are read from PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.Data.PartySource == PartySourceDatabase
}

// Validate checks the database settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// resolvePath joins relative paths onto the data directory.
func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// parseList splits a comma-separated string into a slice, optionally
// lowercasing each entry.
func parseList(list string, lower bool) []string {
	if list == "" {
		return []string{}
	}

	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if lower {
			trimmed = strings.ToLower(trimmed)
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
