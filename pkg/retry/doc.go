// Package retry provides exponential backoff retry logic for transient failures.
//
// The unit registry uses it around configuration loader calls so that a
// briefly unavailable config source (for example a NATS KV bucket during a
// reconnect) does not fail a whole creation call.
//
//	err := retry.Do(ctx, retry.Config{
//	    MaxAttempts: 3,
//	    Retryable:   errors.IsTransient,
//	}, func() error {
//	    cfg, err = loader.Load(ctx, target, params)
//	    return err
//	})
//
// A single attempt returns the error of fn unchanged. Multiple attempts wrap
// the last error with the attempt count. NonRetryable marks an error that
// must stop the loop immediately; Config.Retryable filters the rest.
package retry
