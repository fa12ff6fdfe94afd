// Package retry provides exponential-backoff retry for outbound API calls.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Config holds the configuration for retry logic.
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig returns a sensible default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// ErrorChecker reports whether a failed attempt should be retried.
type ErrorChecker func(err error, statusCode int, responseBody []byte) bool

// RetryableFunc is one attempt of the operation under retry.
type RetryableFunc func(attempt int) (result any, statusCode int, responseBody []byte, err error)

// Logger receives retry progress messages. Pass a zap SugaredLogger's Infof
// or leave nil to disable.
type Logger func(format string, args ...any)

// Options configures an Execute call.
type Options struct {
	Config       Config
	ErrorChecker ErrorChecker
	Logger       Logger
	APIName      string
}

func (c Config) delayFor(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Execute runs fn until it succeeds, fails with a non-retryable error, or
// exhausts opts.Config.MaxRetries. The delay between attempts grows
// exponentially and respects context cancellation.
func Execute(ctx context.Context, opts Options, fn RetryableFunc) (any, error) {
	attempts := opts.Config.MaxRetries + 1

	var lastErr error
	var lastStatusCode int
	var lastResponseBody []byte

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := opts.Config.delayFor(attempt - 1)
			if opts.Logger != nil {
				opts.Logger("%s retry attempt %d/%d after %v delay", opts.APIName, attempt+1, attempts, delay)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, statusCode, responseBody, err := fn(attempt)
		lastErr = err
		lastStatusCode = statusCode
		lastResponseBody = responseBody

		if opts.ErrorChecker != nil && opts.ErrorChecker(err, statusCode, responseBody) && attempt < opts.Config.MaxRetries {
			if opts.Logger != nil {
				if err != nil {
					opts.Logger("%s network error (attempt %d/%d): %v", opts.APIName, attempt+1, attempts, err)
				} else {
					opts.Logger("%s retryable error (attempt %d/%d): status %d", opts.APIName, attempt+1, attempts, statusCode)
				}
			}
			continue
		}

		if err == nil {
			if attempt > 0 && opts.Logger != nil {
				opts.Logger("%s request succeeded on attempt %d/%d", opts.APIName, attempt+1, attempts)
			}
			return result, nil
		}

		// Non-retryable error.
		return nil, err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &ExhaustedError{
		APIName:        opts.APIName,
		MaxAttempts:    attempts,
		LastStatusCode: lastStatusCode,
		LastResponse:   lastResponseBody,
	}
}

// ExhaustedError is returned when every attempt failed with a retryable
// status but no underlying error.
type ExhaustedError struct {
	APIName        string
	MaxAttempts    int
	LastStatusCode int
	LastResponse   []byte
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempts exhausted, last status %d", e.APIName, e.MaxAttempts, e.LastStatusCode)
}
