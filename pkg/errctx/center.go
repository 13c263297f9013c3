// Package errctx collects the first terminal error raised by the background
// goroutines of a reader and lets contexts observe it.
package errctx

import (
	"context"

	"go.uber.org/atomic"
)

// ErrCenter records the first error reported to it. Later errors are dropped.
type ErrCenter struct {
	hasErr atomic.Bool
	errVal atomic.Error
	doneCh chan struct{}
}

func NewErrCenter() *ErrCenter {
	return &ErrCenter{
		doneCh: make(chan struct{}),
	}
}

// OnError records err if it is the first non-nil error.
func (c *ErrCenter) OnError(err error) {
	if err == nil {
		return
	}
	if c.hasErr.Swap(true) {
		return
	}
	c.errVal.Store(err)
	close(c.doneCh)
}

// CheckError returns the recorded error, or nil.
func (c *ErrCenter) CheckError() error {
	return c.errVal.Load()
}

// Done is closed once an error is recorded.
func (c *ErrCenter) Done() <-chan struct{} {
	return c.doneCh
}

// DeriveContext returns a context that is done when either ctx is done or
// an error is recorded. Once done, its Err and context.Cause return the
// recorded error first. ctx must be canceled eventually to release the
// watcher goroutine.
func (c *ErrCenter) DeriveContext(ctx context.Context) context.Context {
	return newErrCtx(ctx, c)
}
