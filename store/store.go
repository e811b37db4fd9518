// Package store provides the durable key-value storage that backs the
// contact form's last-submission timestamp.
package store

import (
	"context"
	"errors"
)

// Error Handling Guidelines:
// - Stores: Use fmt.Errorf("context: %w", err) for wrapping errors
// - Handlers: Use apperrors.* functions for HTTP-appropriate errors

var (
	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("store closed")

	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("store key must not be empty")
)

// KeyValueStore persists string values by string key.
// Get reports found=false for a missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ScopedKey namespaces a base key for one visitor.
func ScopedKey(base, visitorID string) string {
	if visitorID == "" {
		return base
	}
	return base + ":" + visitorID
}
