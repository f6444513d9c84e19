package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// MockCompleter implements Completer for testing
type MockCompleter struct {
	name     string
	response string
	err      error
	delay    time.Duration
	calls    int32
}

func (m *MockCompleter) Name() string {
	return m.name
}

func (m *MockCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// stubbornCompleter ignores cancellation entirely
type stubbornCompleter struct{}

func (stubbornCompleter) Name() string { return "stubborn" }

func (stubbornCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	time.Sleep(200 * time.Millisecond)
	return "late", nil
}

func TestNullCompleter(t *testing.T) {
	var c Completer = NullCompleter{}

	if c.Name() != NoneName {
		t.Errorf("expected name %q, got %q", NoneName, c.Name())
	}
	if Enabled(c) {
		t.Error("expected null completer to be disabled")
	}

	_, err := c.Complete(context.Background(), "prompt", "input")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestEnabled(t *testing.T) {
	if Enabled(nil) {
		t.Error("expected nil completer to be disabled")
	}
	if !Enabled(&MockCompleter{name: "mock"}) {
		t.Error("expected mock completer to be enabled")
	}
}

func TestCall_Success(t *testing.T) {
	res := Call(context.Background(), &MockCompleter{name: "mock", response: "  answer \n"}, time.Second, "p", "i")

	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Text != "answer" {
		t.Errorf("expected trimmed text, got %q", res.Text)
	}
	if res.Provider != "mock" {
		t.Errorf("expected provider mock, got %q", res.Provider)
	}
}

func TestCall_Timeout(t *testing.T) {
	mock := &MockCompleter{name: "slow", response: "late", delay: time.Second}

	start := time.Now()
	res := Call(context.Background(), mock, 20*time.Millisecond, "p", "i")

	if res.OK() {
		t.Fatal("expected failure on timeout")
	}
	if !errors.Is(res.Err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", res.Err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("call was not bounded by the timeout: %v", time.Since(start))
	}
}

func TestCall_TimeoutWithUncooperativeCompleter(t *testing.T) {
	start := time.Now()
	res := Call(context.Background(), stubbornCompleter{}, 20*time.Millisecond, "p", "i")

	if !errors.Is(res.Err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", res.Err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Errorf("expected Call to return at the deadline, took %v", time.Since(start))
	}
}

func TestCall_ProviderError(t *testing.T) {
	res := Call(context.Background(), &MockCompleter{name: "mock", err: errors.New("boom")}, time.Second, "p", "i")

	if !errors.Is(res.Err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", res.Err)
	}
}

func TestCall_EmptyResponse(t *testing.T) {
	res := Call(context.Background(), &MockCompleter{name: "mock", response: "   "}, time.Second, "p", "i")

	if !errors.Is(res.Err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", res.Err)
	}
}

func TestCall_NilCompleter(t *testing.T) {
	res := Call(context.Background(), nil, time.Second, "p", "i")

	if !errors.Is(res.Err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", res.Err)
	}
}
