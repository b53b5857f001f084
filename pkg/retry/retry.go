// Package retry runs operations that may fail transiently, such as the first
// connection to a session store that is still starting up.
//
// Only errors marked with [Transient] are retried; everything else is
// returned at once.
//
//	err := retry.Do(ctx, 5, 500*time.Millisecond, func() error {
//	    if err := client.Ping(ctx).Err(); err != nil {
//	        return retry.Transient(err)
//	    }
//	    return nil
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

// TransientError marks an error as worth another attempt.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so [Do] retries it. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err carries a [TransientError].
func IsTransient(err error) bool {
	return errors.As(err, new(*TransientError))
}

// Do calls fn up to attempts times, doubling delay after each transient
// failure. The last error is returned unwrapped when all attempts fail;
// ctx.Err() is returned if ctx ends while waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err

		if i < attempts-1 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
				delay *= 2
			}
		}
	}

	var te *TransientError
	if errors.As(lastErr, &te) {
		return te.Err
	}
	return lastErr
}
