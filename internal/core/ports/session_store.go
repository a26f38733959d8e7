package ports

import "context"

// SessionStore is durable key/value storage for per-client state.
type SessionStore interface {
	// Get returns the stored value; found is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
