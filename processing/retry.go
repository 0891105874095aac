package processing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mhdiwe/Viral/speech"
)

var defaultBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// retry runs fn until it succeeds, fails permanently, or the backoff schedule
// is exhausted. It gives up early when ctx ends.
func retry[T any](ctx context.Context, op string, backoff []time.Duration, fn func(context.Context) (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil || !retryable(err) || attempt >= len(backoff) {
			return v, err
		}
		slog.Warn("retrying after error", "op", op, "attempt", attempt+1, "wait", backoff[attempt], "error", err)
		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case <-time.After(backoff[attempt]):
		}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, speech.ErrUnexpectedContent) || errors.Is(err, speech.ErrMissingAPIKey) {
		return false
	}
	var se *speech.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
