// Package store keeps the portal's named record collections. Each collection
// is one JSON array stored under its name in a string-keyed Backend.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("store: backend closed")

// Backend is a synchronous string-keyed storage facility.
type Backend interface {
	// GetItem returns the value stored under key. ok is false when the key
	// has never been written.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// Close releases backend resources.
	Close() error
}
