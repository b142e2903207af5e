package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

func TestKeyIsStable(t *testing.T) {
	a, err := Key("ensemble", map[string]any{"pm10": 40, "ozone": 90}, 1)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	b, _ := Key("ensemble", map[string]any{"ozone": 90, "pm10": 40}, 1)
	if a != b {
		t.Fatalf("map order changed key: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "ensemble:") || len(a) != len("ensemble:")+64 {
		t.Fatalf("unexpected key shape %q", a)
	}

	c, _ := Key("ensemble", map[string]any{"pm10": 41, "ozone": 90}, 1)
	d, _ := Key("group", map[string]any{"pm10": 40, "ozone": 90}, 1)
	if c == a || d == a {
		t.Fatalf("distinct requests collided")
	}

	if _, err := Key("x", func() {}); err == nil {
		t.Fatalf("unencodable part accepted")
	}
}

func TestNewPredictionCacheRequiresAddr(t *testing.T) {
	if _, err := NewPredictionCache(logger.Nop(), Options{}); err == nil {
		t.Fatalf("empty addr accepted")
	}
	if _, err := NewPredictionCache(nil, Options{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("nil logger accepted")
	}
}

func TestPredictionCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	ctx := context.Background()
	prefix := "allermind-test:" + time.Now().Format("150405.000000") + ":"
	cache, err := NewPredictionCache(logger.Nop(), Options{Addr: addr, Prefix: prefix, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewPredictionCache: %v", err)
	}
	defer cache.Close()

	type payload struct {
		Hours float64 `json:"hours"`
		Level string  `json:"level"`
	}
	var got payload
	if ok, err := cache.Get(ctx, "missing", &got); ok || err != nil {
		t.Fatalf("miss=%v, %v", ok, err)
	}
	if err := cache.Set(ctx, "k", payload{Hours: 7.5, Level: "Low"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err := cache.Get(ctx, "k", &got)
	if err != nil || !ok || got.Hours != 7.5 || got.Level != "Low" {
		t.Fatalf("Get=%v %v %+v", ok, err, got)
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Set(ctx, prefix+"bad", "{not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if ok, err := cache.Get(ctx, "bad", &got); ok || err != nil {
		t.Fatalf("corrupt entry=%v, %v", ok, err)
	}
}
