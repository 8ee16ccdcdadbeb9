package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Env struct {
	AppAddr string `yaml:"app_addr" validate:"required"`
	GinMode string `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`

	DBHost     string `yaml:"db_host" validate:"required"`
	DBPort     string `yaml:"db_port" validate:"required,numeric"`
	DBUser     string `yaml:"db_user" validate:"required"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name" validate:"required"`

	JWTSecret     string        `yaml:"jwt_secret" validate:"required,min=16"`
	JWTAccessTTL  time.Duration `yaml:"jwt_access_ttl" validate:"gt=0"`
	JWTRefreshTTL time.Duration `yaml:"jwt_refresh_ttl" validate:"gtfield=JWTAccessTTL"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	AutoMigrate        bool     `yaml:"auto_migrate"`
}

func defaultEnv() Env {
	return Env{
		AppAddr:       ":8080",
		DBHost:        "127.0.0.1",
		DBPort:        "3306",
		DBUser:        "root",
		DBName:        "campus_bus",
		JWTSecret:     "super-secret-key-change-me",
		JWTAccessTTL:  24 * time.Hour,
		JWTRefreshTTL: 7 * 24 * time.Hour,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

// LoadEnv builds the runtime config: defaults, then CONFIG_FILE (yaml), then
// environment variables. A .env file in the working dir is loaded first when present.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to read .env: %v", err)
	}

	env, err := loadEnv(os.Getenv("CONFIG_FILE"), os.LookupEnv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return env
}

func loadEnv(path string, lookup func(string) (string, bool)) (Env, error) {
	env := defaultEnv()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Env{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &env); err != nil {
			return Env{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("APP_ADDR", &env.AppAddr)
	str("GIN_MODE", &env.GinMode)
	str("DB_HOST", &env.DBHost)
	str("DB_PORT", &env.DBPort)
	str("DB_USER", &env.DBUser)
	str("DB_NAME", &env.DBName)
	str("JWT_SECRET", &env.JWTSecret)
	if v, ok := lookup("DB_PASSWORD"); ok {
		env.DBPassword = v
	}

	for key, dst := range map[string]*time.Duration{
		"JWT_ACCESS_TTL":  &env.JWTAccessTTL,
		"JWT_REFRESH_TTL": &env.JWTRefreshTTL,
	} {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Env{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		env.CORSAllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
			}
		}
	}
	if v, ok := lookup("AUTO_MIGRATE"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Env{}, fmt.Errorf("AUTO_MIGRATE: %w", err)
		}
		env.AutoMigrate = b
	}

	if err := validator.New().Struct(env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// DSN renders the MySQL connection string.
func (e Env) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = e.DBUser
	cfg.Passwd = e.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(e.DBHost, e.DBPort)
	cfg.DBName = e.DBName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
