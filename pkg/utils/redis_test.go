package utils

import (
	"context"
	"testing"
)

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestRedisConfig_Defaults(t *testing.T) {
	cfg := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if cfg.PoolSize != 20 {
		t.Fatalf("expected pool size 20, got %d", cfg.PoolSize)
	}
	if cfg.DialTimeout <= 0 || cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		t.Fatalf("timeouts must default positive: %+v", cfg)
	}
}
