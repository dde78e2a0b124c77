package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	mod := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	base := k.DimensionsKey("/photos/a.jpg", 1024, mod)
	if base != k.DimensionsKey("/photos/a.jpg", 1024, mod) {
		t.Error("DimensionsKey should be deterministic")
	}
	if base == k.DimensionsKey("/photos/a.jpg", 2048, mod) {
		t.Error("Different sizes should produce different keys")
	}
	if base == k.DimensionsKey("/photos/a.jpg", 1024, mod.Add(time.Second)) {
		t.Error("Different mod times should produce different keys")
	}
	if base == k.DimensionsKey("/photos/b.jpg", 1024, mod) {
		t.Error("Different paths should produce different keys")
	}
	if base[:5] != "dims:" {
		t.Errorf("DimensionsKey prefix unexpected: %s", base)
	}
}

func TestScopedKeyer(t *testing.T) {
	mod := time.Unix(0, 0)
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "openboard:")

	key := scoped.DimensionsKey("/a.png", 1, mod)
	if key != "openboard:"+inner.DimensionsKey("/a.png", 1, mod) {
		t.Errorf("ScopedKeyer DimensionsKey unexpected: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	mod := time.Unix(0, 0)
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.DimensionsKey("/a.png", 1, mod)
	if key != "prefix:"+NewDefaultKeyer().DimensionsKey("/a.png", 1, mod) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit %v, err %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("640x480"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "640x480" {
		t.Errorf("Get(key) = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted entry should be a miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry should be gone after Clear")
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(context.Canceled) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return context.DeadlineExceeded
	})
	if err != context.DeadlineExceeded {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("Retry() = %v after %d calls, want retryable error after 3", err, calls)
	}

	calls = 0
	_ = Retry(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("Retry(attempts=0) made %d calls, want 1", calls)
	}
}

func TestRedisCacheNetworkErrorsAreRetryable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	_, _, err := c.Get(context.Background(), "dims:x")
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() on an unreachable server = %v, want retryable network error", err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("OPENBOARD_TEST_REDIS")
	if url == "" {
		t.Skip("OPENBOARD_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	key := NewScopedKeyer(nil, "openboard-test:").DimensionsKey("/a.jpg", 1, time.Unix(0, 0))
	if err := c.Set(ctx, key, []byte("600x400"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if data, ok, err := c.Get(ctx, key); err != nil || !ok || string(data) != "600x400" {
		t.Errorf("Get() = %q, %v, %v, want 600x400", data, ok, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Error("Get() after Delete hit")
	}
}
