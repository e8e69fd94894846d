package types

import "time"

// Trip is a planned multi-day hike for which reports are generated.
type Trip struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	GPXPath    string    `json:"gpx_path"`
	StartTime  time.Time `json:"start_time"`
	TargetDate time.Time `json:"target_date"`
	Provider   string    `json:"provider,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// SegmentReport pairs one segment's weather data with its risk assessment.
type SegmentReport struct {
	Data       SegmentWeatherData `json:"data"`
	Assessment RiskAssessment     `json:"assessment"`
}

// TripReport is the full generated report for one trip run.
type TripReport struct {
	Trip        Trip             `json:"trip"`
	GeneratedAt time.Time        `json:"generated_at"`
	Segments    []SegmentReport  `json:"segments"`
	Waypoints   []DetectedWaypoint `json:"waypoints,omitempty"`
	Exposed     []ExposedSection `json:"exposed_sections,omitempty"`
	Changes     []WeatherChange  `json:"changes,omitempty"`
}
