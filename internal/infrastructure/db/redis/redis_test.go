package redis

import (
	"testing"
	"time"
)

func TestConfigOptions_DiscreteFields(t *testing.T) {
	opts, err := Config{Addr: "cache:6379", Password: "pw", DB: 3, PoolSize: 20}.options()
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 3 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.PoolSize != 20 {
		t.Fatalf("expected pool size 20, got %d", opts.PoolSize)
	}
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got %v/%v", opts.DialTimeout, opts.ReadTimeout)
	}
}

func TestConfigOptions_URLWins(t *testing.T) {
	opts, err := Config{
		URL:     "redis://:secret@denylist:6380/2",
		Addr:    "ignored:6379",
		Timeout: time.Second,
	}.options()
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	if opts.Addr != "denylist:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("URL not applied: %+v", opts)
	}
	if opts.WriteTimeout != time.Second {
		t.Fatalf("expected 1s write timeout, got %v", opts.WriteTimeout)
	}
}

func TestConfigOptions_BadURL(t *testing.T) {
	if _, err := (Config{URL: "http://nope"}).options(); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}
