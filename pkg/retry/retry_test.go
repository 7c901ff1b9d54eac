package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func fast(opts ...Option) *Retrier {
	return New(append([]Option{WithInitialDelay(time.Millisecond), WithMaxDelay(time.Millisecond)}, opts...)...)
}

func isBoom(err error) bool { return errors.Is(err, errBoom) }

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fast(WithRetryIf(isBoom)).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NoPredicateNeverRetries(t *testing.T) {
	calls := 0
	err := fast().Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnRejectedError(t *testing.T) {
	errOther := errors.New("other")
	calls := 0
	err := fast(WithRetryIf(isBoom)).Do(context.Background(), func(context.Context) error {
		calls++
		return errOther
	})

	assert.Equal(t, errOther, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ReturnsLastErrorAfterLastAttempt(t *testing.T) {
	var retried []int
	err := fast(WithMaxAttempts(2), WithRetryIf(isBoom), WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	})).Do(context.Background(), func(context.Context) error {
		return errBoom
	})

	assert.Equal(t, errBoom, err)
	assert.Equal(t, []int{1}, retried)
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fast(WithRetryIf(isBoom)).Do(ctx, func(context.Context) error {
		calls++
		return errBoom
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestOnce(t *testing.T) {
	calls := 0
	err := Once().Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestTransactionRetrier_UsesClassifier(t *testing.T) {
	errDeadlock := errors.New("deadlock detected")
	calls := 0

	r := TransactionRetrier(4, func(err error) bool { return errors.Is(err, errDeadlock) }, nil)
	r.config.InitialDelay, r.config.MaxDelay = time.Millisecond, time.Millisecond

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errDeadlock
	})

	assert.ErrorIs(t, err, errDeadlock)
	assert.Equal(t, 4, calls)
}

func TestTransactionRetrier_DefaultAttempts(t *testing.T) {
	r := TransactionRetrier(0, nil, nil)
	assert.Equal(t, 3, r.config.MaxAttempts)
}
