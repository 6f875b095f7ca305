package auth

import (
	"context"
	"log/slog"
)

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// compensations undoes completed registration steps, newest first.
type compensations []compensation

func (c *compensations) add(name string, fn func(ctx context.Context) error) {
	*c = append(*c, compensation{name: name, fn: fn})
}

// run executes every compensation even if the caller's context is already
// done. Failures are logged and do not stop the remaining steps.
func (c compensations) run(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].fn(ctx); err != nil {
			slog.WarnContext(ctx, "registration rollback step failed", "step", c[i].name, "error", err)
		}
	}
}
