// Package deadline bounds calls to collaborators that may not observe
// their context.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPanic is wrapped by the error returned when the bounded call panics.
var ErrPanic = errors.New("panicked")

type result[T any] struct {
	value T
	err   error
}

// Run calls fn with a context bounded by timeout and returns as soon as fn
// returns or the context is done, whichever comes first. When the context
// ends first, ctx.Err() is returned and fn's eventual result is discarded;
// fn keeps running in its own goroutine until it returns. A timeout of zero
// or less bounds fn only by ctx. A panic in fn is returned as an error
// wrapping ErrPanic.
func Run[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result[T], 1)
	go func() {
		var r result[T]
		defer func() {
			if p := recover(); p != nil {
				r = result[T]{err: fmt.Errorf("%w: %v", ErrPanic, p)}
			}
			done <- r
		}()
		r.value, r.err = fn(ctx)
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
