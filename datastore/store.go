package datastore

import (
	"context"
	"errors"
	"fmt"
)

// KeyValueStore is the durable key-value boundary the ledger persists
// through. Values are opaque JSON documents.
type KeyValueStore interface {
	// Get returns NoRowsError when the key does not exist
	Get(ctx context.Context, key string) ([]byte, error)
	// Set creates or replaces the value for key
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type NoRowsError struct {
	NoRows bool
	Err    error
}

func (nr NoRowsError) Error() string {
	return fmt.Sprintf("%v: no rows returned for scan: %v", nr.NoRows, nr.Err)
}

func (nr NoRowsError) Unwrap() error {
	return nr.Err
}

// ErrKeyNotFound is wrapped by NoRowsError for stores without a native
// not-found error
var ErrKeyNotFound = errors.New("key not found")

// IsNotFound reports whether err means the key is absent
func IsNotFound(err error) bool {
	var nr NoRowsError
	return errors.As(err, &nr)
}

func notFound(err error) error {
	if err == nil {
		err = ErrKeyNotFound
	}
	return NoRowsError{true, err}
}
