package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "callcenter", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", JWTIssuer: "iss", JWTAudience: "aud"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "callcenter", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Broadcast.DeliveryTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms delivery timeout default, got %s", c.Broadcast.DeliveryTimeout)
	}
	if c.Broadcast.SendBuffer != 256 {
		t.Fatalf("expected 256 send buffer default, got %d", c.Broadcast.SendBuffer)
	}
}

func TestValidate_RejectsExcessiveDeliveryTimeout(t *testing.T) {
	c := Config{
		App:       AppConfig{Env: "local", Port: 8080},
		DB:        DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "callcenter"},
		Redis:     RedisConfig{Host: "localhost", Port: 6379},
		Auth:      AuthConfig{JWTSecret: "secret"},
		Broadcast: BroadcastConfig{DeliveryTimeout: time.Minute},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for 1m delivery timeout")
	}
}
