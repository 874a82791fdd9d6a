// Package retry re-runs store connection attempts that fail for transient reasons.
//
// Retries are opt-in: an ExponentialBackoff with zero attempts makes Execute
// run the operation exactly once.
//
//	executor := retry.NewExecutor(retry.NewStoreErrorClassifier(),
//	    retry.NewExponentialBackoff(cfg.ConnectRetries))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
package retry
