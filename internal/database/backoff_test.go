package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickBackoff(retries int) backoff {
	return backoff{retries: retries, initial: time.Millisecond, ceiling: 5 * time.Millisecond, factor: 2}
}

func TestBackoff(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := quickBackoff(3).do(context.Background(), "connect", func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		down := errors.New("still down")
		calls := 0
		err := quickBackoff(2).do(context.Background(), "connect", func() error {
			calls++
			return down
		})
		require.ErrorIs(t, err, down)
		assert.ErrorContains(t, err, "connect: gave up after 3 attempts")
		assert.Equal(t, 3, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := quickBackoff(5).do(ctx, "connect", func() error { calls++; return nil })
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})

	t.Run("wait is capped", func(t *testing.T) {
		b := backoff{initial: time.Second, ceiling: 3 * time.Second, factor: 10}
		assert.Equal(t, time.Second, b.wait(0))
		assert.Equal(t, 3*time.Second, b.wait(4))
	})

	t.Run("jitter stays within a quarter", func(t *testing.T) {
		b := backoff{initial: 100 * time.Millisecond, ceiling: time.Second, factor: 2, jitter: true}
		for range 20 {
			d := b.wait(1)
			assert.GreaterOrEqual(t, d, 200*time.Millisecond)
			assert.LessOrEqual(t, d, 250*time.Millisecond)
		}
	})
}
