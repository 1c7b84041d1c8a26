package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("overwrite: got %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for i := 0; i < 5; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Clear() = %d, want 5", n)
	}
	if _, hit, _ := c.Get(ctx, "k0"); hit {
		t.Error("entry survived Clear")
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d shard directories left after Clear", len(entries))
	}
}

func TestFileCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Set(ctx, "shared", []byte(strings.Repeat("x", 100+i)), 0)
			if data, hit, _ := c.Get(ctx, "shared"); hit && len(data) < 100 {
				t.Errorf("read a partial entry of %d bytes", len(data))
			}
		}(i)
	}
	wg.Wait()
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}

	a, err := HashJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(map[string]int{"a": 2})
	if a == b {
		t.Error("HashJSON should depend on the value")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HistoryKey("mongodb://x/db.births"); !strings.HasPrefix(got, "history:") {
		t.Errorf("HistoryKey = %q", got)
	}

	d1 := k.DrawingKey("h", DrawingKeyOpts{Width: 800, Height: 800})
	d2 := k.DrawingKey("h", DrawingKeyOpts{Width: 800, Height: 600})
	d3 := k.DrawingKey("other", DrawingKeyOpts{Width: 800, Height: 800})
	if d1 == d2 || d1 == d3 {
		t.Error("drawing keys must depend on history hash and options")
	}
	if d1 != k.DrawingKey("h", DrawingKeyOpts{Width: 800, Height: 800}) {
		t.Error("DrawingKey is not deterministic")
	}

	a1 := k.ArtifactKey("d", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("d", ArtifactKeyOpts{Format: "png"})
	a3 := k.ArtifactKey("d", ArtifactKeyOpts{Format: "svg", ThemeHash: "t"})
	if a1 == a2 || a1 == a3 {
		t.Error("artifact keys must depend on format and theme")
	}
	if !strings.HasPrefix(a1, "artifact:") || !strings.HasPrefix(d1, "drawing:") {
		t.Errorf("unexpected key prefixes: %s, %s", d1, a1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:")

	if got, want := scoped.HistoryKey("src"), "tenant:"+inner.HistoryKey("src"); got != want {
		t.Errorf("HistoryKey = %q, want %q", got, want)
	}
	opts := DrawingKeyOpts{Width: 1}
	if got, want := scoped.DrawingKey("h", opts), "tenant:"+inner.DrawingKey("h", opts); got != want {
		t.Errorf("DrawingKey = %q, want %q", got, want)
	}
	aopts := ArtifactKeyOpts{Format: "json"}
	if got, want := scoped.ArtifactKey("d", aopts), "tenant:"+inner.ArtifactKey("d", aopts); got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}

	if got := NewScopedKeyer(nil, "p:").HistoryKey("s"); got != "p:"+inner.HistoryKey("s") {
		t.Errorf("nil inner: %q", got)
	}
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		addr     string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{"localhost:6379", "localhost:6379", 0, false},
		{"redis://cache.internal:6380/2", "cache.internal:6380", 2, false},
		{"", "", 0, true},
		{"redis://host:6379/notanumber", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			opts, err := redisOptions(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("redisOptions(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if err == nil && (opts.Addr != tt.wantAddr || opts.DB != tt.wantDB) {
				t.Errorf("redisOptions(%q) = %s db %d", tt.addr, opts.Addr, opts.DB)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
	err := classify(timeoutErr{})
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("timeout should be a retryable network error: %v", err)
	}
	plain := errors.New("WRONGTYPE")
	if classify(plain) != plain {
		t.Error("non-network errors should pass through")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message not preserved: %s", err)
	}
	if IsRetryable(ErrNetwork) {
		t.Error("unwrapped errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = 100 * time.Millisecond })
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	permanent := errors.New("permanent")
	calls = 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestRedisCacheClosedClient(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	ctx := context.Background()
	data, ok, err := c.Get(ctx, "k")
	if err == nil || ok || data != nil {
		t.Errorf("Get on closed client = %q, %v, %v; want error", data, ok, err)
	}
	if IsRetryable(err) {
		t.Errorf("closed client error %v marked retryable", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
		t.Error("Set on closed client succeeded")
	}
}
