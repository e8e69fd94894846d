package services

import (
	"math"

	"github.com/routecast/routecast-backend/types"
)

// ChangeThresholds holds the per-metric deltas above which a change is
// significant. Deltas of at least half the threshold are reported as minor.
type ChangeThresholds struct {
	TemperatureC    float64
	WindKmh         float64
	PrecipitationMM float64
}

// DefaultChangeThresholds returns the stock alerting thresholds.
func DefaultChangeThresholds() ChangeThresholds {
	return ChangeThresholds{
		TemperatureC:    5,
		WindKmh:         20,
		PrecipitationMM: 10,
	}
}

// ChangeDetector compares a stored weather snapshot against fresh summaries
// and reports what has materially changed, enabling "weather has worsened
// since your last report" alerts.
type ChangeDetector struct {
	thresholds ChangeThresholds
}

func NewChangeDetector(thresholds ChangeThresholds) *ChangeDetector {
	return &ChangeDetector{thresholds: thresholds}
}

// DetectChanges diffs old and fresh summaries by segment id. Segments
// present in only one of the two sets produce no change record: there is
// nothing to diff against. Thunder levels compare ordinally, never by
// numeric subtraction.
func (d *ChangeDetector) DetectChanges(old, fresh []types.SegmentWeatherData) []types.WeatherChange {
	oldByID := make(map[int]*types.SegmentWeatherSummary, len(old))
	for i := range old {
		if old[i].Summary != nil {
			oldByID[old[i].Segment.ID] = old[i].Summary
		}
	}

	var changes []types.WeatherChange
	for _, f := range fresh {
		prev, ok := oldByID[f.Segment.ID]
		if !ok || f.Summary == nil {
			continue
		}
		id := f.Segment.ID
		changes = appendDelta(changes, id, "temp_avg_c", prev.TempAvgC, f.Summary.TempAvgC, d.thresholds.TemperatureC)
		changes = appendDelta(changes, id, "wind_max_kmh", prev.WindMaxKmh, f.Summary.WindMaxKmh, d.thresholds.WindKmh)
		changes = appendDelta(changes, id, "precipitation_sum_mm", prev.PrecipitationSumMM, f.Summary.PrecipitationSumMM, d.thresholds.PrecipitationMM)
		changes = appendThunderDelta(changes, id, prev.ThunderLevelMax, f.Summary.ThunderLevelMax)
	}
	return changes
}

func appendDelta(changes []types.WeatherChange, segmentID int, metric string, oldV, newV *float64, threshold float64) []types.WeatherChange {
	if oldV == nil || newV == nil || threshold <= 0 {
		return changes
	}
	delta := *newV - *oldV
	var severity types.ChangeSeverity
	switch {
	case math.Abs(delta) >= threshold:
		severity = types.ChangeSignificant
	case math.Abs(delta) >= threshold/2:
		severity = types.ChangeMinor
	default:
		return changes
	}
	return append(changes, types.WeatherChange{
		SegmentID: segmentID,
		Metric:    metric,
		Old:       *oldV,
		New:       *newV,
		Delta:     delta,
		Severity:  severity,
	})
}

// appendThunderDelta records any ordinal movement of the thunder level. An
// increase is always significant; a decrease is reported as minor.
func appendThunderDelta(changes []types.WeatherChange, segmentID int, oldL, newL *types.ThunderLevel) []types.WeatherChange {
	if oldL == nil || newL == nil || *oldL == *newL {
		return changes
	}
	severity := types.ChangeMinor
	if *newL > *oldL {
		severity = types.ChangeSignificant
	}
	return append(changes, types.WeatherChange{
		SegmentID: segmentID,
		Metric:    "thunder_level_max",
		Old:       float64(*oldL),
		New:       float64(*newL),
		Delta:     float64(*newL) - float64(*oldL),
		Severity:  severity,
	})
}
