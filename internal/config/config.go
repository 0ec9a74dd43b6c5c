// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	PGHost     string
	PGPort     string
	PGUser     string
	PGDB       string
	PGPassword string

	CacheBackend  string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	CandidateSecret string
	VolunteerSecret string
	AdminSecret     string
	TokenTTL        time.Duration

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	FrontendURL        string
	CORSAllowedOrigins []string

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it when a proxy in front of the server sets those headers.
	TrustProxy bool
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.AppEnv = "development"
	c.HTTPAddr = ":8080"
	c.PGHost = "localhost"
	c.PGPort = "5432"
	c.PGUser = "postgres"
	c.PGDB = "registrar"
	c.CacheBackend = "memory"
	c.RedisHost = "localhost"
	c.RedisPort = "6379"
	c.TokenTTL = 7 * 24 * time.Hour
	c.S3Region = "us-east-1"
	c.SMTPPort = 587
	c.FrontendURL = "http://localhost:3000"
	c.CORSAllowedOrigins = []string{"http://localhost:3000"}
}

// Load reads an optional env file and overlays the process environment on
// top of the defaults. Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{}
	cfg.LoadDefaults()

	str(&cfg.AppEnv, "APP_ENV")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.HTTPAddr, "HTTP_ADDR")
	str(&cfg.PGHost, "PG_HOST")
	str(&cfg.PGPort, "PG_PORT")
	str(&cfg.PGUser, "PG_USER")
	str(&cfg.PGDB, "PG_DB")
	str(&cfg.PGPassword, "PG_PASSWORD")
	str(&cfg.CacheBackend, "CACHE_BACKEND")
	str(&cfg.RedisHost, "REDIS_HOST")
	str(&cfg.RedisPort, "REDIS_PORT")
	str(&cfg.RedisPassword, "REDIS_PASSWORD")
	str(&cfg.CandidateSecret, "CANDIDATE_SECRET_KEY")
	str(&cfg.VolunteerSecret, "VOLUNTEER_SECRET_KEY")
	str(&cfg.AdminSecret, "ADMIN_SECRET_KEY")
	str(&cfg.S3Bucket, "S3_BUCKET")
	str(&cfg.S3Region, "S3_REGION")
	str(&cfg.S3Endpoint, "S3_ENDPOINT")
	str(&cfg.S3AccessKey, "S3_ACCESS_KEY")
	str(&cfg.S3SecretKey, "S3_SECRET_KEY")
	str(&cfg.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")
	str(&cfg.SMTPHost, "SMTP_HOST")
	str(&cfg.SMTPUser, "SMTP_USER")
	str(&cfg.SMTPPassword, "SMTP_PASSWORD")
	str(&cfg.SMTPFrom, "SMTP_FROM")
	str(&cfg.FrontendURL, "FRONTEND_URL")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = p
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TRUST_PROXY: %w", err)
		}
		cfg.TrustProxy = b
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}

	return cfg, nil
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.CandidateSecret == "" {
		errs = append(errs, errors.New("CANDIDATE_SECRET_KEY is required"))
	}
	if c.VolunteerSecret == "" {
		errs = append(errs, errors.New("VOLUNTEER_SECRET_KEY is required"))
	}
	if c.AdminSecret == "" {
		errs = append(errs, errors.New("ADMIN_SECRET_KEY is required"))
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
