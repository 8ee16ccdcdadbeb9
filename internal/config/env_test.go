package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	env, err := loadEnv("", lookupFrom(nil))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.AppAddr != ":8080" {
		t.Fatalf("default addr = %q", env.AppAddr)
	}
	if env.JWTAccessTTL != 24*time.Hour {
		t.Fatalf("default access ttl = %v", env.JWTAccessTTL)
	}
	if env.AutoMigrate {
		t.Fatalf("auto migrate should default to false")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	env, err := loadEnv("", lookupFrom(map[string]string{
		"APP_ADDR":             ":9000",
		"DB_NAME":              "bus_test",
		"JWT_ACCESS_TTL":       "30m",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"AUTO_MIGRATE":         "true",
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.AppAddr != ":9000" || env.DBName != "bus_test" {
		t.Fatalf("overrides not applied: %+v", env)
	}
	if env.JWTAccessTTL != 30*time.Minute {
		t.Fatalf("access ttl = %v", env.JWTAccessTTL)
	}
	if len(env.CORSAllowedOrigins) != 2 || env.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", env.CORSAllowedOrigins)
	}
	if !env.AutoMigrate {
		t.Fatalf("auto migrate not applied")
	}
}

func TestLoadEnvYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "app_addr: \":7070\"\ndb_host: db.internal\njwt_secret: yaml-secret-0123456789\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	env, err := loadEnv(path, lookupFrom(map[string]string{"DB_HOST": "override"}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.AppAddr != ":7070" {
		t.Fatalf("yaml addr not applied: %q", env.AppAddr)
	}
	if env.DBHost != "override" {
		t.Fatalf("env should win over yaml, got %q", env.DBHost)
	}
	if env.JWTSecret != "yaml-secret-0123456789" {
		t.Fatalf("yaml secret not applied")
	}
}

func TestLoadEnvRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret": {"JWT_SECRET": "short"},
		"bad duration": {"JWT_ACCESS_TTL": "soon"},
		"bad port":     {"DB_PORT": "mysql"},
		"bad bool":     {"AUTO_MIGRATE": "maybe"},
		"bad gin mode": {"GIN_MODE": "verbose"},
	}
	for name, vars := range cases {
		if _, err := loadEnv("", lookupFrom(vars)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDSN(t *testing.T) {
	env := defaultEnv()
	env.DBPassword = "pw"
	want := "root:pw@tcp(127.0.0.1:3306)/campus_bus?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s&clientFoundRows=true"
	if got := env.DSN(); got != want {
		t.Fatalf("dsn = %q", got)
	}
}

func TestDSNEscapesCredentials(t *testing.T) {
	env := Env{DBHost: "127.0.0.1", DBPort: "3306", DBUser: "bus", DBPassword: "p@ss:w/rd", DBName: "campus_bus"}
	cfg, err := mysql.ParseDSN(env.DSN())
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if cfg.Passwd != "p@ss:w/rd" || cfg.User != "bus" {
		t.Fatalf("credentials = %q/%q", cfg.User, cfg.Passwd)
	}
	if cfg.Addr != "127.0.0.1:3306" || cfg.DBName != "campus_bus" {
		t.Fatalf("addr = %q db = %q", cfg.Addr, cfg.DBName)
	}
	if !cfg.ParseTime || !cfg.ClientFoundRows || cfg.Loc != time.Local {
		t.Fatalf("connection flags lost: %+v", cfg)
	}
}
