package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/routecast/routecast-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func snapshotInput(id int) types.SegmentWeatherData {
	start := time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)
	thunder := types.ThunderMed
	return types.SegmentWeatherData{
		Segment: types.TripSegment{
			ID:         id,
			StartPoint: types.TrackPoint{Lat: 47.0, Lon: 11.0, DistanceKM: 1.0},
			EndPoint:   types.TrackPoint{Lat: 47.1, Lon: 11.0, DistanceKM: 5.0},
			StartTime:  start,
			EndTime:    start.Add(4 * time.Hour),
			DistanceKM: 4.0,
		},
		Summary: &types.SegmentWeatherSummary{
			TempAvgC:        ptr(8.5),
			WindMaxKmh:      ptr(42),
			ThunderLevelMax: &thunder,
		},
		Provider: "open-meteo",
	}
}

func newFileStore(t *testing.T) *SnapshotStore {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewSnapshotStore(backend)
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	target := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)

	s.Save(ctx, "trip-1", []types.SegmentWeatherData{snapshotInput(1), snapshotInput(2)}, target)

	got, ok := s.Load(ctx, "trip-1")
	require.True(t, ok)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Segment.ID)
	assert.Equal(t, "open-meteo", got[0].Provider)
	require.NotNil(t, got[0].Summary.TempAvgC)
	assert.InDelta(t, 8.5, *got[0].Summary.TempAvgC, 1e-9)
	require.NotNil(t, got[0].Summary.ThunderLevelMax)
	assert.Equal(t, types.ThunderMed, *got[0].Summary.ThunderLevelMax)

	// Only identity survives; geometry is not replayed from the snapshot.
	assert.Zero(t, got[0].Segment.DistanceKM)
	assert.Zero(t, got[0].Segment.StartPoint.Lat)
	assert.Equal(t, snapshotInput(1).Segment.StartTime, got[0].Segment.StartTime)
}

func TestSnapshotThunderStoredByName(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewSnapshotStore(backend)
	ctx := context.Background()

	s.Save(ctx, "trip-1", []types.SegmentWeatherData{snapshotInput(1)}, time.Now())

	raw, err := os.ReadFile(filepath.Join(dir, "trip-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"MED"`)
	assert.NotContains(t, string(raw), `"thunder_level_max":1`)
}

func TestSnapshotOmitsNilMetrics(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := NewSnapshotStore(backend)

	in := snapshotInput(1)
	in.Summary = &types.SegmentWeatherSummary{TempAvgC: ptr(3)}
	s.Save(context.Background(), "trip-1", []types.SegmentWeatherData{in}, time.Now())

	raw, err := os.ReadFile(filepath.Join(dir, "trip-1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "wind_max_kmh")

	got, ok := s.Load(context.Background(), "trip-1")
	require.True(t, ok)
	assert.Nil(t, got[0].Summary.WindMaxKmh)
}

func TestSnapshotSkipsNilSummaries(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	in := snapshotInput(1)
	in.Summary = nil
	s.Save(ctx, "trip-1", []types.SegmentWeatherData{in, snapshotInput(2)}, time.Now())

	got, ok := s.Load(ctx, "trip-1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Segment.ID)
}

func TestSnapshotLoadMissing(t *testing.T) {
	s := newFileStore(t)
	_, ok := s.Load(context.Background(), "never-saved")
	assert.False(t, ok)
}

func TestSnapshotLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trip-1.json"), []byte("{not json"), 0o644))

	s := NewSnapshotStore(backend)
	_, ok := s.Load(context.Background(), "trip-1")
	assert.False(t, ok)
}

func TestFileBackendSanitizesTripID(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, backend.Write(context.Background(), "../../etc/evil", []byte("x")))
	_, statErr := os.Stat(filepath.Join(dir, "evil.json"))
	assert.NoError(t, statErr)
}

func TestRedisBackendRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	backend := NewRedisBackend(client, time.Hour)
	ctx := context.Background()

	payload := []byte(`{"trip_id":"trip-1"}`)
	mock.ExpectSet("snapshot:trip-1", payload, time.Hour).SetVal("OK")
	require.NoError(t, backend.Write(ctx, "trip-1", payload))

	mock.ExpectGet("snapshot:trip-1").SetVal(string(payload))
	raw, err := backend.Read(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, payload, raw)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBackendMissingKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	backend := NewRedisBackend(client, 0)

	mock.ExpectGet("snapshot:trip-x").RedisNil()
	_, err := backend.Read(context.Background(), "trip-x")
	assert.ErrorIs(t, err, ErrNotFound)
}
