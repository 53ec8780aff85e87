package application

import (
	"context"
	"errors"
	"time"

	"wagerledger/domain/entities"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// retryPolicy bounds how long a unit of work is retried after a retryable
// storage failure. Only failures where the server rolled back are retried.
type retryPolicy struct {
	initialInterval time.Duration
	maxElapsed      time.Duration
}

func newRetryPolicy(maxElapsed time.Duration) retryPolicy {
	return retryPolicy{
		initialInterval: 20 * time.Millisecond,
		maxElapsed:      maxElapsed,
	}
}

// withRetry runs attempt until it succeeds, fails permanently, or the policy
// or ctx runs out. onRetry is called before every repeated attempt.
func withRetry[T any](ctx context.Context, policy retryPolicy, operation string, onRetry func(), attempt func(ctx context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.initialInterval
	b.MaxElapsedTime = policy.maxElapsed

	tries := 0
	result, err := backoff.RetryNotifyWithData(func() (T, error) {
		tries++
		result, err := attempt(ctx)
		if err != nil && !entities.IsRetryable(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		if onRetry != nil {
			onRetry()
		}
		log.WithFields(log.Fields{
			"operation": operation,
			"attempt":   tries,
			"wait":      wait,
			"error":     err,
		}).Warn("Retrying unit of work after transient storage failure")
	})

	// The context can end while backoff waits between attempts
	if isContextError(err) && !errors.Is(err, entities.ErrStorage) {
		err = &entities.StorageError{Op: operation, Err: err}
	}
	return result, err
}

func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
