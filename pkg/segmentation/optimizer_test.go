package segmentation

import (
	"testing"
	"time"

	"github.com/routecast/routecast-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waypointAt(track types.Track, index int, prominence float64) types.DetectedWaypoint {
	return types.DetectedWaypoint{
		Kind:        types.WaypointPeak,
		Point:       track.Points[index],
		ProminenceM: prominence,
	}
}

func TestOptimizeSegmentsEmptyWaypointsUnchanged(t *testing.T) {
	track := flatTrack(10, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	segments := BuildSegments(track, cfg, time.Now())

	got := OptimizeSegments(segments, nil, track, cfg, DefaultOptimizerConfig())
	assert.Equal(t, segments, got)
}

func TestOptimizeSegmentsSnapsBoundaryToWaypoint(t *testing.T) {
	track := flatTrack(10, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	start := time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)
	segments := BuildSegments(track, cfg, start)
	require.Len(t, segments, 2) // boundary near 5 km

	wp := waypointAt(track, 46, 150) // 4.6 km, within the 1.5 km radius
	got := OptimizeSegments(segments, []types.DetectedWaypoint{wp}, track, cfg, DefaultOptimizerConfig())

	require.Len(t, got, 2)
	assert.True(t, got[0].AdjustedToWaypoint)
	require.NotNil(t, got[0].Waypoint)
	assert.InDelta(t, 4.6, got[0].EndPoint.DistanceKM, 1e-9)
	assert.False(t, got[1].AdjustedToWaypoint)
}

func TestOptimizeSegmentsDistanceConservation(t *testing.T) {
	track := flatTrack(15, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	segments := BuildSegments(track, cfg, time.Now())

	waypoints := []types.DetectedWaypoint{
		waypointAt(track, 46, 150),
		waypointAt(track, 104, 90),
	}
	got := OptimizeSegments(segments, waypoints, track, cfg, DefaultOptimizerConfig())

	require.Len(t, got, len(segments))
	var total float64
	for _, s := range got {
		total += s.DistanceKM
	}
	assert.InDelta(t, track.TotalDistanceKM(), total, 0.1)
}

func TestOptimizeSegmentsTimeContinuity(t *testing.T) {
	track := flatTrack(15, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	start := time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)
	segments := BuildSegments(track, cfg, start)

	waypoints := []types.DetectedWaypoint{waypointAt(track, 46, 150)}
	got := OptimizeSegments(segments, waypoints, track, cfg, DefaultOptimizerConfig())

	assert.Equal(t, start, got[0].StartTime)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].EndTime, got[i].StartTime)
	}
}

func TestOptimizeSegmentsPrefersHigherProminence(t *testing.T) {
	track := flatTrack(10, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	segments := BuildSegments(track, cfg, time.Now())
	require.Len(t, segments, 2)

	waypoints := []types.DetectedWaypoint{
		waypointAt(track, 44, 90),
		waypointAt(track, 56, 220),
	}
	got := OptimizeSegments(segments, waypoints, track, cfg, DefaultOptimizerConfig())
	require.NotNil(t, got[0].Waypoint)
	assert.InDelta(t, 220, got[0].Waypoint.ProminenceM, 1e-9)
	assert.InDelta(t, 5.6, got[0].EndPoint.DistanceKM, 1e-9)
}

func TestOptimizeSegmentsIgnoresDistantWaypoints(t *testing.T) {
	track := flatTrack(10, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	segments := BuildSegments(track, cfg, time.Now())

	// 2 km from the only boundary, outside the 1.5 km radius.
	waypoints := []types.DetectedWaypoint{waypointAt(track, 30, 300)}
	got := OptimizeSegments(segments, waypoints, track, cfg, DefaultOptimizerConfig())
	assert.Equal(t, segments, got)
}

func TestOptimizeSegmentsFinalBoundaryFixed(t *testing.T) {
	track := flatTrack(10, 0.1)
	cfg := Config{TargetDurationHours: 1, Speeds: SpeedConfig{FlatKmh: 5}}
	segments := BuildSegments(track, cfg, time.Now())

	// Near the track end: must never pull the final boundary inwards.
	waypoints := []types.DetectedWaypoint{waypointAt(track, 95, 300)}
	got := OptimizeSegments(segments, waypoints, track, cfg, DefaultOptimizerConfig())
	assert.InDelta(t, track.TotalDistanceKM(), got[len(got)-1].EndPoint.DistanceKM, 1e-9)
}
