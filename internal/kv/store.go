// Package kv provides an expiring key-value store over opaque string keys and
// values. The DynamoDB implementation is the production backend; Memory backs
// tests. All writes are single round-trip operations — in particular SetIfAbsent
// is a true conditional write, never a read-then-write pair.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key is absent or its record has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the narrow surface the token core depends on.
type Store interface {
	// Get returns the value for key. found=false on a miss or an expired
	// record; err is reserved for transport/store failures.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set writes value under key with the given TTL, overwriting any
	// existing record.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetIfAbsent writes value under key only if no live record exists.
	// created=false with nil err means the key was already present.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (created bool, err error)

	// RefreshTTL extends an existing record's expiry without touching its
	// value. Returns ErrNotFound if the key is absent.
	RefreshTTL(ctx context.Context, key string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
