package testutil

import (
	"testing"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "")
		t.Setenv("TEST_DB_PORT", "")
		t.Setenv("TEST_DB_USER", "")
		t.Setenv("TEST_DB_PASSWORD", "")
		t.Setenv("TEST_DB_NAME", "")

		cfg := DefaultTestDBConfig()
		if cfg.Host != "localhost" || cfg.Port != "55432" {
			t.Fatalf("unexpected host/port: %s:%s", cfg.Host, cfg.Port)
		}
		if cfg.User != "mmk" || cfg.Password != "mmk" || cfg.DBName != "mmk_session" {
			t.Fatalf("unexpected credentials: %+v", cfg)
		}
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_PORT", "5432")
		if got := DefaultTestDBConfig().Port; got != "5432" {
			t.Fatalf("Port = %s, want 5432", got)
		}
	})
}

func TestTestDBConfig_DSN(t *testing.T) {
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}
	want := "postgres://u:p@db:5432/n?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %s, want %s", got, want)
	}
}

func TestSetupTestRedis(t *testing.T) {
	client := SetupTestRedis(t)
	if err := client.Ping(t.Context()).Err(); err != nil {
		t.Fatalf("ping miniredis: %v", err)
	}
}
