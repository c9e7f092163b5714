package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("server.port want 8080 got %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != "debug" {
		t.Fatalf("server.mode want debug got %s", cfg.Server.Mode)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database.driver want sqlite got %s", cfg.Database.Driver)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis should be disabled by default")
	}
	if cfg.Queue.Enabled {
		t.Fatalf("queue should be disabled by default")
	}
	if cfg.Session.UserTTL() != 7*24*time.Hour {
		t.Fatalf("user session ttl want 168h got %v", cfg.Session.UserTTL())
	}
	if cfg.Session.EmailTTL() != time.Hour {
		t.Fatalf("email session ttl want 1h got %v", cfg.Session.EmailTTL())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPORTLINE_SERVER_PORT", "9090")
	t.Setenv("SPORTLINE_DATABASE_DRIVER", "postgres")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("server.port want 9090 got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("database.driver want postgres got %s", cfg.Database.Driver)
	}
}
