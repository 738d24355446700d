// Package securestore persists small string values (tokens, the taste
// profile) on the device. Values are sealed before they reach disk.
package securestore

import (
	"context"
	"errors"
)

// ErrSealed is returned when a stored value cannot be opened with the current key.
var ErrSealed = errors.New("securestore: value cannot be opened with this key")

// KV is durable key/value storage. A missing key is reported as ok == false, not as an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
