package middleware

import "errors"

// ErrTimeout is returned by the timeout middleware when its own deadline, not
// the caller's, ended the call. It wraps context.DeadlineExceeded.
//
//	if errors.Is(err, middleware.ErrTimeout) {
//	    // the provider did not answer in time
//	}
var ErrTimeout = errors.New("provider call timed out")
