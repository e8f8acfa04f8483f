// Package kvtest provides conformance tests for kv.Store implementations
package kvtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/pkg/kv"
)

// StoreFactory creates a fresh Store instance for testing
type StoreFactory func(t *testing.T) kv.Store

// RunConformanceTests runs all conformance tests against a Store implementation
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, store kv.Store)
	}{
		{"SetGet", testSetGet},
		{"GetNonExistent", testGetNonExistent},
		{"Overwrite", testOverwrite},
		{"DelExists", testDelExists},
		{"TTL", testTTL},
		{"Expire", testExpire},
		{"IncrBy", testIncrBy},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			tt.test(t, store)
		})
	}
}

func testSetGet(t *testing.T, store kv.Store) {
	ctx := context.Background()
	if err := store.Set(ctx, "test:string", []byte("hello world")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "test:string")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func testGetNonExistent(t *testing.T, store kv.Store) {
	_, err := store.Get(context.Background(), "test:missing")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testOverwrite(t *testing.T, store kv.Store) {
	ctx := context.Background()
	_ = store.Set(ctx, "test:overwrite", []byte("one"), time.Hour)
	if err := store.Set(ctx, "test:overwrite", []byte("two")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, _ := store.Get(ctx, "test:overwrite")
	if string(got) != "two" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
	ttl, err := store.TTL(ctx, "test:overwrite")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != -1 {
		t.Fatalf("expected overwrite without ttl to clear expiry, got %v", ttl)
	}
}

func testDelExists(t *testing.T, store kv.Store) {
	ctx := context.Background()
	_ = store.Set(ctx, "test:a", []byte("1"))
	_ = store.Set(ctx, "test:b", []byte("2"))

	n, err := store.Exists(ctx, "test:a", "test:b", "test:c")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 existing keys, got %d (%v)", n, err)
	}

	n, err = store.Del(ctx, "test:a", "test:c")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 deleted key, got %d (%v)", n, err)
	}

	if _, err := store.Get(ctx, "test:a"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected deleted key to be gone, got %v", err)
	}
}

func testTTL(t *testing.T, store kv.Store) {
	ctx := context.Background()
	if err := store.Set(ctx, "test:ttl", []byte("v"), 1500*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ttl, err := store.TTL(ctx, "test:ttl")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	// redis reports whole seconds, rounded
	if ttl <= 0 || ttl > 2*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	time.Sleep(1600 * time.Millisecond)
	if _, err := store.Get(ctx, "test:ttl"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
	if _, err := store.TTL(ctx, "test:ttl"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired ttl, got %v", err)
	}
}

func testExpire(t *testing.T, store kv.Store) {
	ctx := context.Background()
	ok, err := store.Expire(ctx, "test:none", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected Expire on missing key to report false, got %v (%v)", ok, err)
	}

	_ = store.Set(ctx, "test:expire", []byte("v"))
	ok, err = store.Expire(ctx, "test:expire", time.Minute)
	if err != nil || !ok {
		t.Fatalf("Expire failed: %v (%v)", ok, err)
	}
	ttl, _ := store.TTL(ctx, "test:expire")
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl after Expire: %v", ttl)
	}
}

func testIncrBy(t *testing.T, store kv.Store) {
	ctx := context.Background()
	v, err := store.IncrBy(ctx, "test:counter", 1)
	if err != nil || v != 1 {
		t.Fatalf("expected 1, got %d (%v)", v, err)
	}
	v, err = store.IncrBy(ctx, "test:counter", 5)
	if err != nil || v != 6 {
		t.Fatalf("expected 6, got %d (%v)", v, err)
	}

	_ = store.Set(ctx, "test:text", []byte("abc"))
	if _, err := store.IncrBy(ctx, "test:text", 1); err == nil {
		t.Fatal("expected IncrBy on a non-integer to fail")
	}
}

func testPing(t *testing.T, store kv.Store) {
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}
