package types

// TrackPoint is a single point of a parsed GPS track. DistanceKM is the
// cumulative distance from the start of the track; it is computed once during
// parsing and never changes afterwards.
type TrackPoint struct {
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	ElevationM *float64 `json:"elevation_m,omitempty"`
	DistanceKM float64  `json:"distance_km"`
}

// Track is an ordered GPS track with cumulative distances.
type Track struct {
	Name   string       `json:"name,omitempty"`
	Points []TrackPoint `json:"points"`
}

// TotalDistanceKM returns the cumulative distance of the last track point.
func (t *Track) TotalDistanceKM() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return t.Points[len(t.Points)-1].DistanceKM
}

// NamedMarker is an externally supplied named location (summit cross, hut,
// pass marker) used to label detected waypoints.
type NamedMarker struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
