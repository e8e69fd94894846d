package types

// WaypointKind classifies a detected waypoint.
type WaypointKind string

const (
	WaypointPeak   WaypointKind = "PEAK"
	WaypointValley WaypointKind = "VALLEY"
)

// DetectedWaypoint is a prominent peak or valley detected on the elevation
// profile of a track. Name is filled in when a NamedMarker lies close enough
// to the point, otherwise it stays empty.
type DetectedWaypoint struct {
	Kind        WaypointKind `json:"kind"`
	Point       TrackPoint   `json:"point"`
	ProminenceM float64      `json:"prominence_m"`
	Name        string       `json:"name,omitempty"`
}

// ExposureKind classifies an exposed route section.
type ExposureKind string

const (
	ExposureRidge ExposureKind = "ridge"
	ExposurePass  ExposureKind = "pass"
)

// ExposedSection is a route interval at high elevation where hikers are
// exposed to wind and thunderstorms. Produced by merging overlapping
// intervals around high waypoints.
type ExposedSection struct {
	StartKM       float64      `json:"start_km"`
	EndKM         float64      `json:"end_km"`
	MaxElevationM float64      `json:"max_elevation_m"`
	Kind          ExposureKind `json:"kind"`
}
