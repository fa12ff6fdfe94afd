package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
}

func TestExecuteSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Execute(context.Background(), Options{Config: fastConfig()}, func(attempt int) (any, int, []byte, error) {
		calls++
		return "ok", 200, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	calls := 0
	opts := Options{
		Config: fastConfig(),
		ErrorChecker: func(err error, statusCode int, body []byte) bool {
			return err != nil || statusCode >= 500
		},
	}
	result, err := Execute(context.Background(), opts, func(attempt int) (any, int, []byte, error) {
		calls++
		if calls < 3 {
			return nil, 503, nil, errors.New("unavailable")
		}
		return "ok", 200, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	opts := Options{
		Config: fastConfig(),
		ErrorChecker: func(err error, statusCode int, body []byte) bool {
			return statusCode >= 500
		},
	}
	wantErr := errors.New("bad request")
	_, err := Execute(context.Background(), opts, func(attempt int) (any, int, []byte, error) {
		calls++
		return nil, 400, nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	calls := 0
	opts := Options{
		Config: fastConfig(),
		ErrorChecker: func(err error, statusCode int, body []byte) bool {
			return true
		},
	}
	wantErr := errors.New("still failing")
	_, err := Execute(context.Background(), opts, func(attempt int) (any, int, []byte, error) {
		calls++
		return nil, 502, nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 4, calls, "MaxRetries of 3 means 4 attempts")
}

func TestExecuteRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	opts := Options{
		Config: Config{
			MaxRetries:      5,
			BaseDelay:       time.Hour,
			MaxDelay:        time.Hour,
			BackoffMultiple: 1.0,
		},
		ErrorChecker: func(err error, statusCode int, body []byte) bool { return true },
	}

	done := make(chan error, 1)
	go func() {
		_, err := Execute(ctx, opts, func(attempt int) (any, int, []byte, error) {
			return nil, 500, nil, nil
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Execute did not return after cancellation")
	}
}

func TestDelayCappedAtMaxDelay(t *testing.T) {
	cfg := Config{
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        300 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
	assert.Equal(t, 100*time.Millisecond, cfg.delayFor(0))
	assert.Equal(t, 200*time.Millisecond, cfg.delayFor(1))
	assert.Equal(t, 300*time.Millisecond, cfg.delayFor(2))
	assert.Equal(t, 300*time.Millisecond, cfg.delayFor(10))
}
