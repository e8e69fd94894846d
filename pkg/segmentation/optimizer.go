package segmentation

import (
	"math"
	"sort"

	"github.com/routecast/routecast-backend/types"
)

// OptimizerConfig controls boundary adjustment.
type OptimizerConfig struct {
	// SearchRadiusKM is how far, along the track, a segment boundary may be
	// moved to reach a waypoint.
	SearchRadiusKM float64
}

// DefaultOptimizerConfig returns the boundary search radius used for
// hut-to-hut routes.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{SearchRadiusKM: 1.5}
}

// OptimizeSegments moves segment boundaries toward nearby detected waypoints
// so that report units end at natural landmarks rather than arbitrary time
// cutoffs. The segment count is preserved, total distance is conserved
// (distances are re-derived from the track), start/end times stay gap-free,
// and the final boundary never moves. When several waypoints lie within the
// search radius of a boundary the most prominent one wins. An empty waypoint
// list returns the input unchanged.
func OptimizeSegments(segments []types.TripSegment, waypoints []types.DetectedWaypoint, track types.Track, cfg Config, opt OptimizerConfig) []types.TripSegment {
	if len(segments) == 0 || len(waypoints) == 0 || len(track.Points) < 2 {
		return segments
	}

	pts := track.Points
	boundIdx := make([]int, len(segments))
	for k, s := range segments {
		boundIdx[k] = nearestPointIndex(pts, s.EndPoint.DistanceKM)
	}

	adjusted := make([]*types.DetectedWaypoint, len(segments))
	moved := false
	prevIdx := nearestPointIndex(pts, segments[0].StartPoint.DistanceKM)
	for k := 0; k < len(segments)-1; k++ {
		origDist := segments[k].EndPoint.DistanceKM
		var best *types.DetectedWaypoint
		bestIdx := -1
		for i := range waypoints {
			wp := &waypoints[i]
			if math.Abs(wp.Point.DistanceKM-origDist) > opt.SearchRadiusKM {
				continue
			}
			idx := nearestPointIndex(pts, wp.Point.DistanceKM)
			// Boundaries must stay strictly ordered along the track.
			if idx <= prevIdx || idx >= boundIdx[k+1] {
				continue
			}
			if best == nil || wp.ProminenceM > best.ProminenceM {
				best = wp
				bestIdx = idx
			}
		}
		if best != nil {
			if bestIdx != boundIdx[k] {
				moved = true
			}
			boundIdx[k] = bestIdx
			adjusted[k] = best
		}
		prevIdx = boundIdx[k]
	}
	if !moved {
		return segments
	}

	// Rebuild every segment from the final boundary indices so distance,
	// ascent/descent and times all come from the track itself.
	out := make([]types.TripSegment, 0, len(segments))
	start := segments[0].StartTime
	var cumulativeHours float64
	i0 := nearestPointIndex(pts, segments[0].StartPoint.DistanceKM)
	for k := range segments {
		i1 := boundIdx[k]
		dist, ascent, descent, hours := statsBetween(pts, i0, i1, cfg.Speeds)
		seg := types.TripSegment{
			ID:            segments[k].ID,
			StartPoint:    pts[i0],
			EndPoint:      pts[i1],
			StartTime:     start.Add(durationHours(cumulativeHours)),
			EndTime:       start.Add(durationHours(cumulativeHours + hours)),
			DurationHours: hours,
			DistanceKM:    dist,
			AscentM:       ascent,
			DescentM:      descent,
		}
		if adjusted[k] != nil {
			seg.AdjustedToWaypoint = true
			seg.Waypoint = adjusted[k]
		}
		out = append(out, seg)
		cumulativeHours += hours
		i0 = i1
	}
	return out
}

// nearestPointIndex returns the index of the track point closest to the
// given cumulative distance. Track distances are monotonically increasing.
func nearestPointIndex(pts []types.TrackPoint, distKM float64) int {
	i := sort.Search(len(pts), func(j int) bool { return pts[j].DistanceKM >= distKM })
	if i == len(pts) {
		return len(pts) - 1
	}
	if i > 0 && distKM-pts[i-1].DistanceKM < pts[i].DistanceKM-distKM {
		return i - 1
	}
	return i
}

func statsBetween(pts []types.TrackPoint, i0, i1 int, sp SpeedConfig) (dist, ascent, descent, hours float64) {
	for i := i0 + 1; i <= i1; i++ {
		d := pts[i].DistanceKM - pts[i-1].DistanceKM
		var up, down float64
		if pts[i].ElevationM != nil && pts[i-1].ElevationM != nil {
			dElev := *pts[i].ElevationM - *pts[i-1].ElevationM
			if dElev > 0 {
				up = dElev
			} else {
				down = -dElev
			}
		}
		dist += d
		ascent += up
		descent += down
		hours += ComputeHikingTime(d, up, down, sp)
	}
	return dist, ascent, descent, hours
}
