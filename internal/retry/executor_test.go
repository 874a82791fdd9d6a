package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyOperation struct {
	calls     int
	failUntil int
	err       error
}

func (f *flakyOperation) run(context.Context) error {
	f.calls++
	if f.calls < f.failUntil {
		return f.err
	}
	return nil
}

func fastBackoff(attempts int) *ExponentialBackoff {
	return NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestExecutor_ZeroAttemptsRunsOnce(t *testing.T) {
	op := &flakyOperation{failUntil: 3, err: sqlite3.Error{Code: sqlite3.ErrBusy}}
	err := NewExecutor(NewStoreErrorClassifier(), fastBackoff(0)).Execute(context.Background(), op.run)

	require.Error(t, err)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_RetriesTransientUntilSuccess(t *testing.T) {
	op := &flakyOperation{failUntil: 3, err: &pgconn.PgError{Code: "57P03"}}

	var retries []int
	ex := NewExecutor(NewStoreErrorClassifier(), fastBackoff(5)).
		WithOnRetry(func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) })

	require.NoError(t, ex.Execute(context.Background(), op.run))
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, []int{0, 1}, retries)
}

func TestExecutor_FatalErrorStopsImmediately(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	op := &flakyOperation{failUntil: 10, err: fatal}

	err := NewExecutor(NewStoreErrorClassifier(), fastBackoff(5)).Execute(context.Background(), op.run)
	assert.Same(t, fatal, err)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("dial tcp: connection refused")
	op := &flakyOperation{failUntil: 100, err: transient}

	err := NewExecutor(NewStoreErrorClassifier(), fastBackoff(2)).Execute(context.Background(), op.run)
	assert.Equal(t, transient, err)
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := &flakyOperation{failUntil: 100, err: errors.New("connection reset by peer")}
	err := NewExecutor(NewStoreErrorClassifier(), fastBackoff(5)).Execute(ctx, op.run)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, op.calls)
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewStoreErrorClassifier(), nil) })
}
