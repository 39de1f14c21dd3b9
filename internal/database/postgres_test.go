package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stwalsh4118/minerals/internal/config"
)

// getTestConfig returns database configuration for integration tests.
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "minerals"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  1,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// requireIntegration skips unless an integration database is available.
func requireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("MINERALS_TEST_DB") == "" {
		t.Skip("Skipping integration test: MINERALS_TEST_DB not set")
	}
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		Name:     "minerals",
		User:     "reader",
		Password: "p@ss:word/1",
	}

	dsn := DSN(cfg)

	if !strings.HasPrefix(dsn, "postgres://reader:") {
		t.Errorf("Expected postgres scheme and user, got %s", dsn)
	}
	if strings.Contains(dsn, "p@ss:word/1") {
		t.Error("Expected password to be escaped")
	}
	if !strings.Contains(dsn, "@db.internal:5433/minerals") {
		t.Errorf("Expected host, port and database in DSN, got %s", dsn)
	}
	if !strings.HasSuffix(dsn, "?sslmode=disable") {
		t.Errorf("Expected sslmode=disable, got %s", dsn)
	}
}

func TestNilDatabase(t *testing.T) {
	var db *Database

	if err := db.Ping(context.Background()); err == nil {
		t.Error("Expected ping on nil database to fail")
	}
	if db.Stats() != nil {
		t.Error("Expected nil stats for nil database")
	}
	// Should not panic
	db.Close()

	empty := &Database{}
	if err := empty.Ping(context.Background()); err == nil {
		t.Error("Expected ping without pool to fail")
	}
}

func TestNewPostgresPool_Success(t *testing.T) {
	requireIntegration(t)

	ctx := context.Background()
	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	defer db.Close()

	if db.Pool == nil {
		t.Error("Expected Pool to be initialized")
	}
	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	stats := db.Stats()
	if stats == nil {
		t.Fatal("Expected stats to be available")
	}
	if stats.MaxConns() != 5 {
		t.Errorf("Expected MaxConns 5, got %d", stats.MaxConns())
	}
}

func TestNewPostgresPool_InvalidHost(t *testing.T) {
	requireIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Host = "invalid-host-that-does-not-exist"

	if _, err := NewPostgresPool(ctx, cfg); err == nil {
		t.Error("Expected error when connecting to invalid host")
	}
}

func TestPing_AfterClose(t *testing.T) {
	requireIntegration(t)

	ctx := context.Background()
	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	db.Close()
	db.Close()

	if err := db.Ping(ctx); err == nil {
		t.Error("Expected ping to fail after pool is closed")
	}
}
