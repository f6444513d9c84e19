package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_PerProvider(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if err := limiter.Wait(context.Background(), "openai"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// The next openai token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected wait to fail (exhausted tokens)")
	}

	if err := limiter.Wait(context.Background(), "anthropic"); err != nil {
		t.Errorf("expected other provider to pass, got %v", err)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx, "ollama"); err != nil {
			t.Fatalf("expected unlimited limiter to pass request %d: %v", i, err)
		}
	}
}

func TestRateLimited_RespectsDeadline(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	mock := &MockCompleter{name: "mock", response: "ok"}
	rl := NewRateLimited(mock, limiter)

	if rl.Name() != "mock" {
		t.Errorf("expected wrapped name, got %s", rl.Name())
	}

	// First call consumes the only token
	res := Call(context.Background(), rl, time.Second, "p", "")
	if !res.OK() {
		t.Fatalf("first call failed: %v", res.Err)
	}

	// Second call would wait ~100s for a token; the timeout wins
	res = Call(context.Background(), rl, 50*time.Millisecond, "p", "")
	if res.OK() {
		t.Fatal("expected second call to fail")
	}
	if !errors.Is(res.Err, ErrTimeout) && !errors.Is(res.Err, ErrUnavailable) {
		t.Errorf("expected timeout or unavailable, got %v", res.Err)
	}
}
