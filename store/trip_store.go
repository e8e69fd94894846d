package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/routecast/routecast-backend/types"
)

// PgxIface is the narrow slice of pgxpool.Pool used by the trip store,
// satisfied by pgxmock in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgTripStore is the Postgres-backed trip registry.
type PgTripStore struct {
	db PgxIface
}

var _ TripStore = (*PgTripStore)(nil)

func NewPgTripStore(db PgxIface) *PgTripStore {
	return &PgTripStore{db: db}
}

func (s *PgTripStore) CreateTrip(ctx context.Context, trip types.Trip) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO trips (id, name, gpx_path, start_time, target_date, provider, recipients, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		trip.ID, trip.Name, trip.GPXPath, trip.StartTime, trip.TargetDate,
		trip.Provider, trip.Recipients, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

func (s *PgTripStore) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, gpx_path, start_time, target_date, provider, recipients, created_at
		 FROM trips WHERE id = $1`, id)

	var trip types.Trip
	err := row.Scan(&trip.ID, &trip.Name, &trip.GPXPath, &trip.StartTime,
		&trip.TargetDate, &trip.Provider, &trip.Recipients, &trip.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

func (s *PgTripStore) ListTrips(ctx context.Context) ([]types.Trip, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, gpx_path, start_time, target_date, provider, recipients, created_at
		 FROM trips ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []types.Trip
	for rows.Next() {
		var trip types.Trip
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.GPXPath, &trip.StartTime,
			&trip.TargetDate, &trip.Provider, &trip.Recipients, &trip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (s *PgTripStore) DeleteTrip(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
