package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leofalp/shipshape/core/client"
	"github.com/leofalp/shipshape/providers/ai"
)

// NewTimeoutMiddleware creates a Middleware that enforces a per-request
// deadline on provider calls. The context is wrapped with context.WithTimeout
// and cancelled once the provider returns or the deadline expires.
//
// If the caller supplies a context that already has a shorter deadline, that
// shorter deadline wins as per normal context semantics, and the resulting
// error is not reported as ErrTimeout. A non-positive timeout disables the
// middleware.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			response, err := next(callCtx, request)
			if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, err)
			}
			return response, err
		}
	}
}
