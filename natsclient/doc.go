// Package natsclient connects to NATS and exposes JetStream key-value
// buckets that hold unit configurations.
//
// The Client adds a circuit breaker on top of the nats.go connection:
// after a threshold of consecutive failures (default 5) Connect fails fast
// with ErrCircuitOpen until an exponentially growing backoff elapses.
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithLogger(logger),
//	    natsclient.WithName("semunits"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{Bucket: "units"})
//	if err != nil {
//	    return err
//	}
//	store := natsclient.NewKVStore(bucket)
//	entry, err := store.Get(ctx, "workers.ingest")
//
// KVStore bounds every operation by a timeout and maps missing keys to
// ErrKVKeyNotFound. MemoryBucket implements the same Bucket interface in
// process for tests and offline use.
package natsclient
