// Package eventstore persists the history of pipeline runs as an append-only
// event log in SQLite.
package eventstore

import (
	"context"
	"time"
)

// Event is one recorded pipeline occurrence.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error

	// GetByBuildID retrieves all events of one pipeline run, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// Recent retrieves up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
