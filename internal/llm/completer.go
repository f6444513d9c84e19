// Package llm wraps the optional language model behind a single Completer
// capability. Every call goes through Call, which bounds it by a timeout and
// reports the outcome as an explicit Result.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Completer is the only capability the analysis needs from a language model
type Completer interface {
	// Name returns the provider name ("none" for the null completer)
	Name() string

	// Complete answers prompt using input as the supporting material
	Complete(ctx context.Context, prompt, input string) (string, error)
}

var (
	// ErrUnavailable means no model is configured or the provider failed
	ErrUnavailable = errors.New("language model unavailable")

	// ErrTimeout means the provider did not answer before the deadline
	ErrTimeout = errors.New("language model timed out")

	// ErrEmptyResponse means the provider answered with no text
	ErrEmptyResponse = errors.New("language model returned an empty response")
)

// NoneName is the provider name of the null completer
const NoneName = "none"

// NullCompleter is used when no model is configured. It always reports
// ErrUnavailable, so "disabled" and "failed" share one code path.
type NullCompleter struct{}

// Name returns "none"
func (NullCompleter) Name() string {
	return NoneName
}

// Complete always fails with ErrUnavailable
func (NullCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	return "", ErrUnavailable
}

// Enabled reports whether c can reach a real model
func Enabled(c Completer) bool {
	return c != nil && c.Name() != NoneName
}

// Result is the outcome of one model call
type Result struct {
	Text     string
	Provider string
	Err      error
}

// OK reports whether the call produced usable text
func (r Result) OK() bool {
	return r.Err == nil && r.Text != ""
}

// Call performs a single bounded attempt. It returns once the completer
// answers or the timeout elapses, whichever comes first; there are no retries.
func Call(ctx context.Context, c Completer, timeout time.Duration, prompt, input string) Result {
	if c == nil {
		return Result{Provider: NoneName, Err: ErrUnavailable}
	}
	res := Result{Provider: c.Name()}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := c.Complete(ctx, prompt, input)
		done <- reply{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		res.Err = wrapError(ctx, ctx.Err())
		return res
	case r := <-done:
		if r.err != nil {
			res.Err = wrapError(ctx, r.err)
			return res
		}
		res.Text = strings.TrimSpace(r.text)
		if res.Text == "" {
			res.Err = ErrEmptyResponse
		}
		return res
	}
}

// wrapError maps provider errors onto the package sentinels
func wrapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout), errors.Is(err, ErrEmptyResponse):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
