package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProviderRoundTrip(t *testing.T) {
	provider := NewMemoryProvider()
	ctx := context.Background()

	if _, err := provider.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := provider.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := provider.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %q", got)
	}

	if err := provider.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryProviderTTLExpiry(t *testing.T) {
	provider := NewMemoryProvider()
	ctx := context.Background()

	if err := provider.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryProviderCopiesValue(t *testing.T) {
	provider := NewMemoryProvider()
	ctx := context.Background()

	value := []byte("original")
	if err := provider.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value[0] = 'X'

	got, err := provider.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("cache shared caller memory, got %q", got)
	}
}
