package session

import "context"

// DefaultKey is the storage slot holding the authentication token.
const DefaultKey = "access_token"

// Store is a durable key/value slot backend for session data.
//
// Implementations must treat Delete of a missing key as success.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
