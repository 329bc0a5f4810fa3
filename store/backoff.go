package store

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// RetryPolicy configures the bounded exponential backoff applied to
// transient KV failures (§4.1 "every transient failure ... is retried with
// bounded exponential backoff; unrecoverable failures propagate as
// StoreUnavailable").
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy starts at 50ms, doubles each retry up to a 2s interval,
// and gives up after a one-minute retry budget.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  time.Minute,
		Multiplier:      2.0,
	}
}

func (p RetryPolicy) newBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = p.MaxElapsedTime
	eb.Multiplier = p.Multiplier
	return eb
}

// TransientError marks an error returned by a KV implementation as
// retryable. KV implementations that can distinguish transient failures
// (timeouts, write conflicts) from permanent ones should wrap the
// transient ones in TransientError; withRetry treats any other error as
// permanent and returns it immediately.
type TransientError struct {
	Err error
}

func (t *TransientError) Error() string { return t.Err.Error() }
func (t *TransientError) Unwrap() error { return t.Err }

// withRetry runs op under the given retry policy, retrying only errors
// wrapped in TransientError, and logging each retry at Warn level (§2.2).
// Once the retry budget is exhausted, or op returns a non-transient error,
// withRetry surfaces ErrStoreUnavailable (for exhausted transient retries)
// or the original error (for permanent failures).
func withRetry(policy RetryPolicy, opName string, op func() error) error {
	var lastErr error
	attempt := 0
	retryOp := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		var transient *TransientError
		if !asTransient(err, &transient) {
			lastErr = err
			return backoff.Permanent(err)
		}
		lastErr = transient.Err
		logrus.WithFields(logrus.Fields{
			"op":      opName,
			"attempt": attempt,
			"error":   transient.Err,
		}).Warn("store: retrying transient failure")
		return transient
	}

	err := backoff.Retry(retryOp, policy.newBackOff())
	if err == nil {
		return nil
	}
	var transient *TransientError
	if asTransient(err, &transient) {
		return ErrStoreUnavailable.New(lastErr)
	}
	return lastErr
}

func asTransient(err error, out **TransientError) bool {
	if t, ok := err.(*TransientError); ok {
		*out = t
		return true
	}
	return false
}
