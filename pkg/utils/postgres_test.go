package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	cfg := PostgresPoolConfig{}.withDefaults()
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 25 {
		t.Fatalf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.PingTimeout != 5*time.Second {
		t.Fatalf("expected 5s ping timeout, got %s", cfg.PingTimeout)
	}
}
