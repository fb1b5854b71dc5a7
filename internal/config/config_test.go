package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("BACKEND_URL")
	os.Unsetenv("SESSION_STORE")
	os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8080/api" {
		t.Errorf("expected default backend URL, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Session.Store != StoreRedis {
		t.Errorf("expected redis store by default, got %s", cfg.Session.Store)
	}
	if cfg.Session.CookieName != "consultorio_session" {
		t.Errorf("expected default cookie name, got %s", cfg.Session.CookieName)
	}
	if cfg.BackendTimeout() != 15*time.Second {
		t.Errorf("expected 15s backend timeout, got %s", cfg.BackendTimeout())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("BACKEND_URL", "https://api.clinica.test/api/")
	os.Setenv("SESSION_STORE", "memory")
	defer os.Unsetenv("BACKEND_URL")
	defer os.Unsetenv("SESSION_STORE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.clinica.test/api" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Session.Store != StoreMemory {
		t.Errorf("expected memory store, got %s", cfg.Session.Store)
	}
}

func TestLoad_PostgresStoreRequiresDatabaseURL(t *testing.T) {
	os.Setenv("SESSION_STORE", "postgres")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("SESSION_STORE")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing for postgres store")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Backend.BaseURL = "http://localhost:8080/api"
		c.Session.Store = StoreMemory
		c.Session.CookieName = "s"
		c.Session.TTLHours = 1
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty backend", func(c *Config) { c.Backend.BaseURL = "" }, true},
		{"non http backend", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, true},
		{"unknown store", func(c *Config) { c.Session.Store = "etcd" }, true},
		{"no cookie name", func(c *Config) { c.Session.CookieName = "" }, true},
		{"zero ttl", func(c *Config) { c.Session.TTLHours = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}
	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
