// Package segmentation splits a hiking track into time-bounded segments
// using a configurable Naismith-style speed model, and reconciles segment
// boundaries with detected waypoints.
package segmentation

import (
	"time"

	"github.com/routecast/routecast-backend/types"
)

// SpeedConfig holds the three terms of the additive hiking time model.
// A term is skipped entirely when its speed is zero or negative.
type SpeedConfig struct {
	FlatKmh     float64
	AscentMPerH float64
	DescentMPerH float64
}

// Config controls segment building.
type Config struct {
	TargetDurationHours float64
	Speeds              SpeedConfig
}

// DefaultConfig returns typical hut-to-hut hiking parameters.
func DefaultConfig() Config {
	return Config{
		TargetDurationHours: 4,
		Speeds: SpeedConfig{
			FlatKmh:      4,
			AscentMPerH:  400,
			DescentMPerH: 600,
		},
	}
}

// ComputeHikingTime estimates hiking hours using the additive three-term
// Naismith variant: horizontal time plus separate ascent and descent terms.
// Terms with a non-positive speed or non-positive metric contribute nothing.
func ComputeHikingTime(distanceKM, ascentM, descentM float64, sp SpeedConfig) float64 {
	var hours float64
	if sp.FlatKmh > 0 && distanceKM > 0 {
		hours += distanceKM / sp.FlatKmh
	}
	if sp.AscentMPerH > 0 && ascentM > 0 {
		hours += ascentM / sp.AscentMPerH
	}
	if sp.DescentMPerH > 0 && descentM > 0 {
		hours += descentM / sp.DescentMPerH
	}
	return hours
}

// BuildSegments walks the track and closes a segment whenever the
// accumulated hiking time reaches cfg.TargetDurationHours, or at the last
// point. Segment start/end times are derived from a running cumulative
// offset added to startTime, so segments are gap-free and overlap-free by
// construction. The final segment may be shorter than the target; it is
// never merged back. Tracks with fewer than two points yield no segments.
func BuildSegments(track types.Track, cfg Config, startTime time.Time) []types.TripSegment {
	pts := track.Points
	if len(pts) < 2 {
		return nil
	}

	var segments []types.TripSegment
	var cumulativeHours float64

	segStart := 0
	var accHours, accDist, accAscent, accDescent float64

	for i := 1; i < len(pts); i++ {
		dist := pts[i].DistanceKM - pts[i-1].DistanceKM
		var ascent, descent float64
		if pts[i].ElevationM != nil && pts[i-1].ElevationM != nil {
			dElev := *pts[i].ElevationM - *pts[i-1].ElevationM
			if dElev > 0 {
				ascent = dElev
			} else {
				descent = -dElev
			}
		}

		accHours += ComputeHikingTime(dist, ascent, descent, cfg.Speeds)
		accDist += dist
		accAscent += ascent
		accDescent += descent

		if accHours >= cfg.TargetDurationHours || i == len(pts)-1 {
			segments = append(segments, types.TripSegment{
				ID:            len(segments) + 1,
				StartPoint:    pts[segStart],
				EndPoint:      pts[i],
				StartTime:     startTime.Add(durationHours(cumulativeHours)),
				EndTime:       startTime.Add(durationHours(cumulativeHours + accHours)),
				DurationHours: accHours,
				DistanceKM:    accDist,
				AscentM:       accAscent,
				DescentM:      accDescent,
			})
			cumulativeHours += accHours
			segStart = i
			accHours, accDist, accAscent, accDescent = 0, 0, 0, 0
		}
	}
	return segments
}

func durationHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
