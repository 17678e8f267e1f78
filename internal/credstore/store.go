// Package credstore provides the persistent credential store the session
// core reads and writes. It is a small key→string store with pluggable
// backends; the file backend encrypts values at rest and is the default for
// real deployments, while the memory backend serves tests and throwaway
// runs.
package credstore

import (
	"context"
	"errors"
)

// Keys owned by the session core. Code outside the session core must not
// write these keys directly.
const (
	KeyAuthToken = "auth_token"
	KeyUserInfo  = "user_info"
	KeyUserRole  = "user_role"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("credstore: key not found")

// Store is a persistent key→string store. Implementations must be safe for
// concurrent use. Delete of an absent key is a no-op, never an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
