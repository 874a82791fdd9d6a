package retry

import (
	"context"
	"time"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// Executor runs an operation, retrying transient failures per its backoff strategy.
// Safe for concurrent use; WithOnRetry returns a copy.
type Executor struct {
	classifier egresos.ErrorClassifier
	strategy   egresos.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier egresos.ErrorClassifier, strategy egresos.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls callback before each wait.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// WithLogger returns a copy of e that reports retries as warnings.
func (e *Executor) WithLogger(logger egresos.Logger) *Executor {
	return e.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Warn("Transient failure (retry %d/%d in %s): %v", attempt+1, e.strategy.MaxAttempts(), delay.Round(time.Millisecond), err)
	})
}

// Execute returns nil on the first success, or the last error once retries
// are exhausted, the error is not transient, or ctx is done.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil || !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
