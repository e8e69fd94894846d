package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/routecast/routecast-backend/logger"
	"github.com/routecast/routecast-backend/types"
)

// SnapshotStore persists, per trip, the aggregated weather summary of each
// segment after a report run. Snapshotting is best-effort: persistence
// failures are logged and absorbed so they can never block report delivery.
type SnapshotStore struct {
	backend SnapshotBackend
	now     func() time.Time
}

func NewSnapshotStore(backend SnapshotBackend) *SnapshotStore {
	return &SnapshotStore{backend: backend, now: time.Now}
}

// Save serializes the segment summaries to the per-trip blob. Enum fields
// are stored by name and nil metrics are omitted, so "never computed" stays
// distinguishable from "computed as zero". Errors are logged, never
// returned.
func (s *SnapshotStore) Save(ctx context.Context, tripID string, segments []types.SegmentWeatherData, targetDate time.Time) {
	log := logger.GetLogger()

	snapshot := types.TripSnapshot{
		TripID:     tripID,
		TargetDate: targetDate.UTC().Format("2006-01-02"),
		SnapshotAt: s.now().UTC(),
	}
	for _, seg := range segments {
		if seg.Summary == nil {
			continue
		}
		if snapshot.Provider == "" {
			snapshot.Provider = seg.Provider
		}
		snapshot.Segments = append(snapshot.Segments, types.SnapshotSegment{
			SegmentID:  seg.Segment.ID,
			StartTime:  seg.Segment.StartTime,
			EndTime:    seg.Segment.EndTime,
			Aggregated: *seg.Summary,
		})
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorw("Failed to serialize weather snapshot", "tripID", tripID, "error", err)
		return
	}
	if err := s.backend.Write(ctx, tripID, raw); err != nil {
		log.Errorw("Failed to persist weather snapshot", "tripID", tripID, "error", err)
	}
}

// Load returns the stored summaries for a trip, or ok=false when there is no
// usable snapshot. Reconstructed segments carry only identity fields
// (id, time window); geometry is deliberately zeroed because the snapshot
// only supports metric comparison by segment id, not geometric replay. A
// corrupt snapshot is logged and treated as not-found.
func (s *SnapshotStore) Load(ctx context.Context, tripID string) ([]types.SegmentWeatherData, bool) {
	log := logger.GetLogger()

	raw, err := s.backend.Read(ctx, tripID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warnw("Failed to read weather snapshot", "tripID", tripID, "error", err)
		}
		return nil, false
	}

	var snapshot types.TripSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		log.Warnw("Corrupt weather snapshot, ignoring", "tripID", tripID, "error", err)
		return nil, false
	}

	out := make([]types.SegmentWeatherData, 0, len(snapshot.Segments))
	for _, seg := range snapshot.Segments {
		summary := seg.Aggregated
		out = append(out, types.SegmentWeatherData{
			Segment: types.TripSegment{
				ID:        seg.SegmentID,
				StartTime: seg.StartTime,
				EndTime:   seg.EndTime,
			},
			Summary:  &summary,
			Provider: snapshot.Provider,
		})
	}
	return out, true
}

// FileBackend stores one JSON file per trip under a base directory.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(tripID string) string {
	// filepath.Base strips any path separators from externally supplied ids.
	return filepath.Join(b.dir, filepath.Base(tripID)+".json")
}

func (b *FileBackend) Read(_ context.Context, tripID string) ([]byte, error) {
	raw, err := os.ReadFile(b.path(tripID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (b *FileBackend) Write(_ context.Context, tripID string, data []byte) error {
	return os.WriteFile(b.path(tripID), data, 0o644)
}

// RedisBackend stores snapshots as Redis string values, one key per trip.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend creates a backend. ttl of zero keeps snapshots forever.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) key(tripID string) string {
	return "snapshot:" + tripID
}

func (b *RedisBackend) Read(ctx context.Context, tripID string) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.key(tripID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (b *RedisBackend) Write(ctx context.Context, tripID string, data []byte) error {
	return b.client.Set(ctx, b.key(tripID), data, b.ttl).Err()
}
