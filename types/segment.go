package types

import "time"

// TripSegment is a contiguous, time-bounded slice of a hiking route. Segments
// are created by the segment builder, optionally boundary-adjusted by the
// hybrid optimizer, and immutable afterwards. Segment identity plus the time
// window forms the weather cache key.
type TripSegment struct {
	ID         int        `json:"id"`
	StartPoint TrackPoint `json:"start_point"`
	EndPoint   TrackPoint `json:"end_point"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	DurationHours float64 `json:"duration_hours"`
	DistanceKM    float64 `json:"distance_km"`
	AscentM       float64 `json:"ascent_m"`
	DescentM      float64 `json:"descent_m"`

	// AdjustedToWaypoint is set when the segment's end boundary was moved to
	// align with a detected waypoint.
	AdjustedToWaypoint bool              `json:"adjusted_to_waypoint,omitempty"`
	Waypoint           *DetectedWaypoint `json:"waypoint,omitempty"`
}

// MidPoint returns the midpoint between the segment's start and end points,
// used as the representative location for weather queries.
func (s *TripSegment) MidPoint() (lat, lon float64) {
	return (s.StartPoint.Lat + s.EndPoint.Lat) / 2, (s.StartPoint.Lon + s.EndPoint.Lon) / 2
}
