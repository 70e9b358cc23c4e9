package contextutil

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds a single contract read
	DefaultTimeout = 30 * time.Second
	// ShortTimeout bounds one poll of the user info
	ShortTimeout = 5 * time.Second
)

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}

// WithCustomTimeout falls back to DefaultTimeout for non-positive durations.
func WithCustomTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(parent, timeout)
}
