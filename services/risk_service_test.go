package services

import (
	"testing"

	"github.com/routecast/routecast-backend/config"
	"github.com/routecast/routecast-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testCatalog() *config.ThresholdCatalog {
	return config.NewThresholdCatalog(map[string]types.MetricSpec{
		"cape":             {RiskThresholds: map[string]float64{"high": 2500, "medium": 1000}},
		"wind":             {RiskThresholds: map[string]float64{"high": 60, "medium": 40}},
		"gust":             {RiskThresholds: map[string]float64{"high": 70, "medium": 50}},
		"precipitation":    {RiskThresholds: map[string]float64{"high": 20, "medium": 8}},
		"rain_probability": {RiskThresholds: map[string]float64{"high": 80, "medium": 60}},
		"wind_chill":       {RiskThresholds: map[string]float64{"high_lt": -15}},
		"visibility":       {RiskThresholds: map[string]float64{"high_lt": 200}},
	})
}

func dataWith(summary *types.SegmentWeatherSummary) types.SegmentWeatherData {
	return types.SegmentWeatherData{
		Segment: types.TripSegment{ID: 7},
		Summary: summary,
	}
}

func TestAssessSegmentGustHigh(t *testing.T) {
	svc := NewRiskService(testCatalog())

	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{GustMaxKmh: ptr(75)}))
	assert.Equal(t, 7, a.SegmentID)
	require.Len(t, a.Risks, 1)
	assert.Equal(t, types.RiskWind, a.Risks[0].Type)
	assert.Equal(t, types.RiskHigh, a.Risks[0].Level)
	detail, ok := a.Risks[0].Detail.(types.GustDetail)
	require.True(t, ok)
	assert.InDelta(t, 75, detail.GustKmh, 1e-9)
}

func TestAssessSegmentMediumThreshold(t *testing.T) {
	svc := NewRiskService(testCatalog())

	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{WindMaxKmh: ptr(45)}))
	require.Len(t, a.Risks, 1)
	assert.Equal(t, types.RiskModerate, a.Risks[0].Level)
}

func TestAssessSegmentBelowThresholdNoRisk(t *testing.T) {
	svc := NewRiskService(testCatalog())

	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{
		WindMaxKmh:         ptr(30),
		PrecipitationSumMM: ptr(2),
	}))
	assert.Empty(t, a.Risks)
}

func TestAssessSegmentInvertedMetrics(t *testing.T) {
	svc := NewRiskService(testCatalog())

	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{
		WindChillMinC:  ptr(-20),
		VisibilityMinM: ptr(150),
	}))
	require.Len(t, a.Risks, 2)
	for _, r := range a.Risks {
		assert.Equal(t, types.RiskHigh, r.Level)
	}

	// At or above high_lt no finding is produced.
	a = svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{
		WindChillMinC:  ptr(-15),
		VisibilityMinM: ptr(200),
	}))
	assert.Empty(t, a.Risks)
}

func TestAssessSegmentThunderEnum(t *testing.T) {
	svc := NewRiskService(testCatalog())

	high := types.ThunderHigh
	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{ThunderLevelMax: &high}))
	require.Len(t, a.Risks, 1)
	assert.Equal(t, types.RiskThunderstorm, a.Risks[0].Type)
	assert.Equal(t, types.RiskHigh, a.Risks[0].Level)

	med := types.ThunderMed
	a = svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{ThunderLevelMax: &med}))
	require.Len(t, a.Risks, 1)
	assert.Equal(t, types.RiskModerate, a.Risks[0].Level)

	none := types.ThunderNone
	a = svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{ThunderLevelMax: &none}))
	assert.Empty(t, a.Risks)
}

func TestAssessSegmentDedupesPerCategory(t *testing.T) {
	svc := NewRiskService(testCatalog())

	// Wind moderate plus gust high both map to the wind category; only the
	// high finding survives.
	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{
		WindMaxKmh: ptr(45),
		GustMaxKmh: ptr(80),
	}))
	require.Len(t, a.Risks, 1)
	assert.Equal(t, types.RiskWind, a.Risks[0].Type)
	assert.Equal(t, types.RiskHigh, a.Risks[0].Level)
	_, ok := a.Risks[0].Detail.(types.GustDetail)
	assert.True(t, ok)
}

func TestAssessSegmentSortedBySeverity(t *testing.T) {
	svc := NewRiskService(testCatalog())

	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{
		WindMaxKmh:         ptr(45),  // moderate
		PrecipitationSumMM: ptr(25),  // high
		VisibilityMinM:     ptr(100), // high
	}))
	require.Len(t, a.Risks, 3)
	for i := 1; i < len(a.Risks); i++ {
		assert.GreaterOrEqual(t, a.Risks[i-1].Level, a.Risks[i].Level)
	}
	assert.Equal(t, types.RiskModerate, a.Risks[2].Level)
}

func TestAssessSegmentMissingDataAndCatalog(t *testing.T) {
	// Unconfigured catalog entries disable their rules.
	svc := NewRiskService(config.NewThresholdCatalog(map[string]types.MetricSpec{}))
	a := svc.AssessSegment(dataWith(&types.SegmentWeatherSummary{GustMaxKmh: ptr(120)}))
	assert.Empty(t, a.Risks)

	// Nil summaries short-circuit.
	svc = NewRiskService(testCatalog())
	a = svc.AssessSegment(dataWith(nil))
	assert.Empty(t, a.Risks)
}

func TestAssessSegmentsOrderPreserving(t *testing.T) {
	svc := NewRiskService(testCatalog())

	in := []types.SegmentWeatherData{
		{Segment: types.TripSegment{ID: 1}, Summary: &types.SegmentWeatherSummary{GustMaxKmh: ptr(75)}},
		{Segment: types.TripSegment{ID: 2}, Summary: &types.SegmentWeatherSummary{}},
	}
	out := svc.AssessSegments(in)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].SegmentID)
	assert.Equal(t, 2, out[1].SegmentID)
	assert.Empty(t, out[1].Risks)
}

func TestMaxRiskLevel(t *testing.T) {
	assert.Equal(t, types.RiskLow, MaxRiskLevel(types.RiskAssessment{}))
	a := types.RiskAssessment{Risks: []types.Risk{
		{Type: types.RiskRain, Level: types.RiskModerate},
		{Type: types.RiskWind, Level: types.RiskHigh},
	}}
	assert.Equal(t, types.RiskHigh, MaxRiskLevel(a))
}
