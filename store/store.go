// Package store holds persistence: the durable per-trip weather snapshots
// used for change detection, and the Postgres-backed trip registry.
package store

import (
	"context"
	"errors"

	"github.com/routecast/routecast-backend/types"
)

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
)

// SnapshotBackend is a directory-like blob store keyed by trip id, with
// read-whole/write-whole semantics. Implementations: FileBackend,
// RedisBackend.
type SnapshotBackend interface {
	Read(ctx context.Context, tripID string) ([]byte, error)
	Write(ctx context.Context, tripID string, data []byte) error
}

// TripStore persists planned trips.
type TripStore interface {
	CreateTrip(ctx context.Context, trip types.Trip) error
	GetTrip(ctx context.Context, id string) (*types.Trip, error)
	ListTrips(ctx context.Context) ([]types.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
}
