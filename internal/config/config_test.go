package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.JWT.ExpireTime != 7*24*time.Hour {
		t.Errorf("JWT.ExpireTime = %v, want 168h", cfg.JWT.ExpireTime)
	}
	if cfg.Feed.DefaultLimit != 10 || cfg.Feed.ExploreLimit != 30 {
		t.Errorf("Feed = %+v, want default 10 / explore 30", cfg.Feed)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}
	if cfg.Redis.Enabled || cfg.Kafka.Enabled {
		t.Errorf("redis/kafka should be disabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  port: ":9000"
database:
  host: "db.internal"
  port: 5433
jwt:
  secret: "from-file"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_NAME", "socialtest")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != ":9000" {
		t.Errorf("Server.Port = %q, want :9000", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("JWT.Secret = %q, want env override", cfg.JWT.Secret)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}

	dsn := cfg.Database.DSN()
	wantDSN := "host=db.internal port=5433 user=social password=social dbname=socialtest sslmode=disable"
	if dsn != wantDSN {
		t.Errorf("DSN() = %q, want %q", dsn, wantDSN)
	}
}

func TestDSNPrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://u:p@h:5432/db", Host: "ignored"}
	if got := c.DSN(); got != "postgres://u:p@h:5432/db" {
		t.Errorf("DSN() = %q", got)
	}
}
