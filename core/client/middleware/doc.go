// Package middleware provides the built-in [client.Middleware] implementations.
//
//   - [NewTimeoutMiddleware] bounds every provider call with context.WithTimeout.
//   - [NewLoggingMiddleware] emits slog entries before and after every call.
//
// There is no retry middleware. A failed call is reported to the caller.
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first, so a request travels
//
//	Timeout → Logging → Provider
package middleware
