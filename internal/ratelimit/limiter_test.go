package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeWindowStore executes the sliding-window script against in-memory
// sorted sets, with the same purge/count/insert semantics as Redis.
type fakeWindowStore struct {
	sets     map[string][]float64
	failWith error
}

func newFakeWindowStore() *fakeWindowStore {
	return &fakeWindowStore{sets: make(map[string][]float64)}
}

func (f *fakeWindowStore) run(ctx context.Context, keys []string, args ...interface{}) *redis.Cmd {
	if f.failWith != nil {
		return redis.NewCmdResult(nil, f.failWith)
	}
	key := keys[0]
	windowStart := argFloat(args[0])
	now := argFloat(args[1])
	limit := argInt(args[2])

	kept := f.sets[key][:0]
	for _, score := range f.sets[key] {
		if score > windowStart {
			kept = append(kept, score)
		}
	}
	count := int64(len(kept))

	if count < limit {
		f.sets[key] = append(kept, now)
		return redis.NewCmdResult([]interface{}{count + 1, int64(1)}, nil)
	}
	f.sets[key] = kept
	return redis.NewCmdResult([]interface{}{count, int64(0)}, nil)
}

func (f *fakeWindowStore) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(ctx, keys, args...)
}

func (f *fakeWindowStore) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(ctx, keys, args...)
}

func (f *fakeWindowStore) EvalRO(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(ctx, keys, args...)
}

func (f *fakeWindowStore) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(ctx, keys, args...)
}

func (f *fakeWindowStore) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult([]bool{true}, nil)
}

func (f *fakeWindowStore) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func argFloat(v interface{}) float64 {
	switch x := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}

func argInt(v interface{}) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int64:
		return x
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

func limiterAt(store redis.Scripter, at *time.Time) *Limiter {
	l := NewLimiter(store)
	l.now = func() time.Time { return *at }
	return l
}

func TestAdmit_EnforcesLimit(t *testing.T) {
	store := newFakeWindowStore()
	now := time.Unix(1_700_000_000, 0)
	l := limiterAt(store, &now)

	const limit = 3
	for i := 1; i <= limit; i++ {
		now = now.Add(time.Second)
		d := l.Admit(context.Background(), "u-1", "/ai/enhance", limit, time.Hour)
		if !d.Allowed {
			t.Fatalf("request %d should be admitted", i)
		}
		if want := limit - i; d.Remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i, d.Remaining, want)
		}
	}

	now = now.Add(time.Second)
	d := l.Admit(context.Background(), "u-1", "/ai/enhance", limit, time.Hour)
	if d.Allowed {
		t.Fatal("request over the limit should be rejected")
	}
	if d.Remaining != 0 {
		t.Errorf("rejected request remaining = %d, want 0", d.Remaining)
	}
	if d.RetryAfter <= 0 {
		t.Error("rejected request should carry a retry hint")
	}
}

func TestAdmit_WindowSlides(t *testing.T) {
	store := newFakeWindowStore()
	now := time.Unix(1_700_000_000, 0)
	l := limiterAt(store, &now)

	period := time.Minute
	for i := 0; i < 2; i++ {
		if d := l.Admit(context.Background(), "u-1", "/ai/enhance", 2, period); !d.Allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
		now = now.Add(time.Second)
	}
	if d := l.Admit(context.Background(), "u-1", "/ai/enhance", 2, period); d.Allowed {
		t.Fatal("third request inside the window should be rejected")
	}

	// Once the original admissions age out, the caller is admitted again.
	now = now.Add(period + time.Second)
	if d := l.Admit(context.Background(), "u-1", "/ai/enhance", 2, period); !d.Allowed {
		t.Fatal("request after window elapsed should be admitted")
	}
}

func TestAdmit_SeparateWindowsPerCallerAndPath(t *testing.T) {
	store := newFakeWindowStore()
	now := time.Unix(1_700_000_000, 0)
	l := limiterAt(store, &now)

	if d := l.Admit(context.Background(), "u-1", "/ai/enhance", 1, time.Hour); !d.Allowed {
		t.Fatal("first request should be admitted")
	}
	if d := l.Admit(context.Background(), "u-1", "/ai/enhance", 1, time.Hour); d.Allowed {
		t.Fatal("second request on same window should be rejected")
	}

	// Other callers and other paths have their own windows.
	if d := l.Admit(context.Background(), "u-2", "/ai/enhance", 1, time.Hour); !d.Allowed {
		t.Error("different caller should have a fresh window")
	}
	if d := l.Admit(context.Background(), "u-1", "/ai/styles", 1, time.Hour); !d.Allowed {
		t.Error("different path should have a fresh window")
	}
}

func TestAdmit_NilStore_FailOpen(t *testing.T) {
	l := NewLimiter(nil)
	d := l.Admit(context.Background(), "u-1", "/ai/enhance", 10, time.Minute)
	if !d.Allowed {
		t.Error("expected admission when store is nil")
	}
	if d.Remaining != 9 {
		t.Errorf("expected remaining=9, got %d", d.Remaining)
	}
}

func TestAdmit_StoreError_FailOpen(t *testing.T) {
	store := newFakeWindowStore()
	store.failWith = errors.New("connection refused")
	now := time.Unix(1_700_000_000, 0)
	l := limiterAt(store, &now)

	for i := 0; i < 50; i++ {
		d := l.Admit(context.Background(), "u-1", "/ai/enhance", 2, time.Minute)
		if !d.Allowed {
			t.Fatalf("check %d should admit when the store errors", i)
		}
	}
}

func TestWindowKey(t *testing.T) {
	got := WindowKey("u-42", "/ai/enhance/")
	want := "rate_limit:u-42:/ai/enhance"
	if got != want {
		t.Errorf("WindowKey = %q, want %q", got, want)
	}
}

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/ai/enhance", "/ai/enhance"},
		{"/ai/enhance/", "/ai/enhance"},
		{"/", "/"},
		{"", "/"},
		{"/ai/enhance/status/2f1e4a1e-9d60-4c2e-8f3a-0b1c2d3e4f5a", "/ai/enhance/status/{id}"},
		{"/ai/enhance/status/0123456789abcdef0123", "/ai/enhance/status/{id}"},
		{"/users/12345/profile", "/users/{id}/profile"},
	}
	for _, tt := range tests {
		if got := CanonicalPath(tt.in); got != tt.want {
			t.Errorf("CanonicalPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
