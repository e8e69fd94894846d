package types

import "time"

// SnapshotSegment is the persisted form of one segment's aggregated summary.
// Only identity fields and the summary survive the round-trip; geometry is
// deliberately not stored (reloaded segments are identity-only stand-ins for
// metric comparison by segment id).
type SnapshotSegment struct {
	SegmentID  int                   `json:"segment_id"`
	StartTime  time.Time             `json:"start_time"`
	EndTime    time.Time             `json:"end_time"`
	Aggregated SegmentWeatherSummary `json:"aggregated"`
}

// TripSnapshot is the durable per-trip weather snapshot written after a
// report run and diffed against on the next run.
type TripSnapshot struct {
	TripID     string            `json:"trip_id"`
	TargetDate string            `json:"target_date"`
	SnapshotAt time.Time         `json:"snapshot_at"`
	Provider   string            `json:"provider"`
	Segments   []SnapshotSegment `json:"segments"`
}

// ChangeSeverity grades a detected weather change.
type ChangeSeverity string

const (
	ChangeMinor       ChangeSeverity = "MINOR"
	ChangeSignificant ChangeSeverity = "SIGNIFICANT"
)

// WeatherChange is one detected delta between the stored snapshot and a
// fresh summary for a single metric of a single segment.
type WeatherChange struct {
	SegmentID int            `json:"segment_id"`
	Metric    string         `json:"metric"`
	Old       float64        `json:"old"`
	New       float64        `json:"new"`
	Delta     float64        `json:"delta"`
	Severity  ChangeSeverity `json:"severity"`
}
