package errctx

import (
	"context"
)

// errCtx is the context the background goroutines of a reader run under.
// It ends when the reader closes its parent or when any goroutine reports a
// terminal error, so one failed task stops the refresh loop and the other
// task runners together.
type errCtx struct {
	context.Context
	center *ErrCenter
}

func newErrCtx(parent context.Context, center *ErrCenter) *errCtx {
	ctx, cancel := context.WithCancelCause(parent)
	// exits when the reader closes the parent at the latest
	go func() {
		select {
		case <-center.doneCh:
			cancel(center.CheckError())
		case <-ctx.Done():
		}
	}()
	return &errCtx{
		Context: ctx,
		center:  center,
	}
}

// Err reports the terminal error in place of context.Canceled, which is what
// Next returns to the caller.
func (c *errCtx) Err() error {
	if c.Context.Err() == nil {
		return nil
	}
	if err := c.center.CheckError(); err != nil {
		return err
	}
	return c.Context.Err()
}
