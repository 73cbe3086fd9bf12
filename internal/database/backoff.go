package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// backoff is the reconnect policy: attempts grow by factor from initial up
// to ceiling, optionally stretched by up to a quarter for jitter.
type backoff struct {
	retries int
	initial time.Duration
	ceiling time.Duration
	factor  float64
	jitter  bool
}

func defaultBackoff() backoff {
	return backoff{
		retries: 5,
		initial: 100 * time.Millisecond,
		ceiling: 30 * time.Second,
		factor:  2,
		jitter:  true,
	}
}

// do runs fn at most retries+1 times. It returns fn's last error wrapped with
// op, or ctx.Err() as soon as ctx is done.
func (b backoff) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= b.retries {
			return fmt.Errorf("%s: gave up after %d attempts: %w", op, attempt+1, err)
		}

		wait := b.wait(attempt)
		slog.DebugContext(ctx, "Database attempt failed",
			"event", "db_retry", "op", op,
			"attempt", attempt+1, "wait_ms", wait.Milliseconds(), "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (b backoff) wait(attempt int) time.Duration {
	d := math.Min(float64(b.initial)*math.Pow(b.factor, float64(attempt)), float64(b.ceiling))
	if b.jitter {
		d += rand.Float64() * d / 4
	}
	return time.Duration(d)
}
