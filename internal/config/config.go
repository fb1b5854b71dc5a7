package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session store kinds
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Env string `mapstructure:"env"`

	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Backend struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"backend"`

	Session struct {
		Store        string `mapstructure:"store"`
		CookieName   string `mapstructure:"cookie_name"`
		CookieSecure bool   `mapstructure:"cookie_secure"`
		TTLHours     int    `mapstructure:"ttl_hours"`
	} `mapstructure:"session"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`

	Archive struct {
		Bucket    string `mapstructure:"bucket"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`

	Timezone string `mapstructure:"timezone"`
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Accept"})
	v.SetDefault("backend.base_url", "http://localhost:8080/api")
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("session.store", StoreRedis)
	v.SetDefault("session.cookie_name", "consultorio_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("timezone", "America/Sao_Paulo")

	// config file is optional
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	if u := os.Getenv("BACKEND_URL"); u != "" {
		cfg.Backend.BaseURL = u
	}
	if s := os.Getenv("SESSION_STORE"); s != "" {
		cfg.Session.Store = s
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.URL = dsn
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if b := os.Getenv("ARCHIVE_BUCKET"); b != "" {
		cfg.Archive.Bucket = b
	}
	if e := os.Getenv("ARCHIVE_ENDPOINT"); e != "" {
		cfg.Archive.Endpoint = e
	}
	if k := os.Getenv("ARCHIVE_ACCESS_KEY"); k != "" {
		cfg.Archive.AccessKey = k
	}
	if k := os.Getenv("ARCHIVE_SECRET_KEY"); k != "" {
		cfg.Archive.SecretKey = k
	}

	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres session store")
		}
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if c.Session.TTLHours <= 0 {
		return errors.New("session.ttl_hours must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// ArchiveEnabled reports whether exported reports are copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}
