package services

import (
	"sort"

	"github.com/routecast/routecast-backend/types"
)

// thresholdRule describes one catalog-driven risk rule. Rules are data, not
// branching code: adding a metric means adding a table entry.
type thresholdRule struct {
	metricID string
	riskType types.RiskType
	// inverted metrics trigger when the value is *below* the "high_lt"
	// threshold (visibility, wind chill).
	inverted bool
	value    func(*types.SegmentWeatherSummary) *float64
	detail   func(float64) types.RiskDetail
}

var thresholdRules = []thresholdRule{
	{
		metricID: "cape",
		riskType: types.RiskThunderstorm,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.CAPEMaxJkg },
		detail:   func(v float64) types.RiskDetail { return types.CAPEDetail{CAPEJkg: v} },
	},
	{
		metricID: "wind",
		riskType: types.RiskWind,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.WindMaxKmh },
		detail:   func(v float64) types.RiskDetail { return types.WindDetail{WindKmh: v} },
	},
	{
		metricID: "gust",
		riskType: types.RiskWind,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.GustMaxKmh },
		detail:   func(v float64) types.RiskDetail { return types.GustDetail{GustKmh: v} },
	},
	{
		metricID: "precipitation",
		riskType: types.RiskRain,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.PrecipitationSumMM },
		detail:   func(v float64) types.RiskDetail { return types.RainDetail{AmountMM: v} },
	},
	{
		metricID: "rain_probability",
		riskType: types.RiskRain,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.RainProbMaxPct },
		detail:   func(v float64) types.RiskDetail { return types.RainProbabilityDetail{ProbabilityPct: v} },
	},
	{
		metricID: "wind_chill",
		riskType: types.RiskWindChill,
		inverted: true,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.WindChillMinC },
		detail:   func(v float64) types.RiskDetail { return types.WindChillDetail{WindChillC: v} },
	},
	{
		metricID: "visibility",
		riskType: types.RiskPoorVisibility,
		inverted: true,
		value:    func(s *types.SegmentWeatherSummary) *float64 { return s.VisibilityMinM },
		detail:   func(v float64) types.RiskDetail { return types.VisibilityDetail{VisibilityM: v} },
	},
}

// RiskService maps aggregated weather summaries to risk findings, driven
// entirely by the externally configured threshold catalog. It is a pure
// function of its inputs: no ambient state, no side effects.
type RiskService struct {
	catalog types.ThresholdCatalog
}

func NewRiskService(catalog types.ThresholdCatalog) *RiskService {
	return &RiskService{catalog: catalog}
}

// AssessSegment evaluates every rule against the segment's summary and
// returns at most one Risk per category, highest severity winning, sorted
// HIGH-first. Missing metric values and unconfigured catalog entries are
// skipped silently: partial weather data and partial threshold catalogs are
// the normal case, not an error.
func (s *RiskService) AssessSegment(data types.SegmentWeatherData) types.RiskAssessment {
	assessment := types.RiskAssessment{SegmentID: data.Segment.ID}
	if data.Summary == nil {
		return assessment
	}
	summary := data.Summary

	var risks []types.Risk
	if summary.ThunderLevelMax != nil {
		switch *summary.ThunderLevelMax {
		case types.ThunderHigh:
			risks = append(risks, types.Risk{
				Type:   types.RiskThunderstorm,
				Level:  types.RiskHigh,
				Detail: types.ThunderDetail{Level: types.ThunderHigh},
			})
		case types.ThunderMed:
			risks = append(risks, types.Risk{
				Type:   types.RiskThunderstorm,
				Level:  types.RiskModerate,
				Detail: types.ThunderDetail{Level: types.ThunderMed},
			})
		}
	}

	for _, rule := range thresholdRules {
		v := rule.value(summary)
		if v == nil {
			continue
		}
		spec, ok := s.catalog.GetMetric(rule.metricID)
		if !ok || len(spec.RiskThresholds) == 0 {
			continue
		}

		var level types.RiskLevel
		matched := false
		if rule.inverted {
			if t, ok := spec.RiskThresholds["high_lt"]; ok && *v < t {
				level = types.RiskHigh
				matched = true
			}
		} else {
			// "high" checked before "medium"; first match wins.
			if t, ok := spec.RiskThresholds["high"]; ok && *v >= t {
				level = types.RiskHigh
				matched = true
			} else if t, ok := spec.RiskThresholds["medium"]; ok && *v >= t {
				level = types.RiskModerate
				matched = true
			}
		}
		if matched {
			risks = append(risks, types.Risk{
				Type:   rule.riskType,
				Level:  level,
				Detail: rule.detail(*v),
			})
		}
	}

	assessment.Risks = dedupeRisks(risks)
	return assessment
}

// AssessSegments applies AssessSegment per element, order-preserving.
func (s *RiskService) AssessSegments(data []types.SegmentWeatherData) []types.RiskAssessment {
	out := make([]types.RiskAssessment, 0, len(data))
	for _, d := range data {
		out = append(out, s.AssessSegment(d))
	}
	return out
}

// MaxRiskLevel returns the highest severity in an assessment, LOW when empty.
func MaxRiskLevel(a types.RiskAssessment) types.RiskLevel {
	return a.MaxLevel()
}

// dedupeRisks keeps the highest-severity risk per category and sorts the
// result by severity descending, with category as a deterministic tiebreak.
func dedupeRisks(risks []types.Risk) []types.Risk {
	byType := make(map[types.RiskType]types.Risk, len(risks))
	for _, r := range risks {
		if existing, ok := byType[r.Type]; !ok || r.Level > existing.Level {
			byType[r.Type] = r
		}
	}
	out := make([]types.Risk, 0, len(byType))
	for _, r := range byType {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Type < out[j].Type
	})
	return out
}
