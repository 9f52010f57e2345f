package natsclient

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// MemoryBucket is an in-process Bucket for tests and offline validation.
type MemoryBucket struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	rev     uint64

	// GetErr, when set, is returned by every Get.
	GetErr error
}

// NewMemoryBucket creates an empty in-memory bucket
func NewMemoryBucket(name string) *MemoryBucket {
	return &MemoryBucket{
		name:    name,
		entries: make(map[string]*memoryEntry),
	}
}

// Bucket returns the bucket name
func (b *MemoryBucket) Bucket() string { return b.name }

// Get returns the latest entry for key
func (b *MemoryBucket) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.GetErr != nil {
		return nil, b.GetErr
	}
	e, ok := b.entries[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return e, nil
}

// Put stores value under key and returns the new revision
func (b *MemoryBucket) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rev++
	created := time.Now()
	if prev, ok := b.entries[key]; ok {
		created = prev.created
	}
	b.entries[key] = &memoryEntry{
		bucket:   b.name,
		key:      key,
		value:    slices.Clone(value),
		revision: b.rev,
		created:  created,
	}
	return b.rev, nil
}

// Delete removes key
func (b *MemoryBucket) Delete(ctx context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; !ok {
		return jetstream.ErrKeyNotFound
	}
	delete(b.entries, key)
	return nil
}

// ListKeys lists every key in the bucket
func (b *MemoryBucket) ListKeys(ctx context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	keys := slices.Sorted(maps.Keys(b.entries))
	b.mu.RUnlock()

	if len(keys) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	ch := make(chan string, len(keys))
	for _, k := range keys {
		ch <- k
	}
	close(ch)
	return memoryLister(ch), nil
}

type memoryLister chan string

func (l memoryLister) Keys() <-chan string { return l }
func (l memoryLister) Stop() error         { return nil }

type memoryEntry struct {
	bucket   string
	key      string
	value    []byte
	revision uint64
	created  time.Time
}

func (e *memoryEntry) Bucket() string                  { return e.bucket }
func (e *memoryEntry) Key() string                     { return e.key }
func (e *memoryEntry) Value() []byte                   { return e.value }
func (e *memoryEntry) Revision() uint64                { return e.revision }
func (e *memoryEntry) Created() time.Time              { return e.created }
func (e *memoryEntry) Delta() uint64                   { return 0 }
func (e *memoryEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }
