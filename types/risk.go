package types

import "encoding/json"

// RiskLevel is an ordered severity (LOW < MODERATE < HIGH).
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
)

func (l RiskLevel) String() string {
	switch l {
	case RiskModerate:
		return "MODERATE"
	case RiskHigh:
		return "HIGH"
	default:
		return "LOW"
	}
}

func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// RiskType is the category of a risk finding.
type RiskType string

const (
	RiskThunderstorm   RiskType = "THUNDERSTORM"
	RiskWind           RiskType = "WIND"
	RiskRain           RiskType = "RAIN"
	RiskWindChill      RiskType = "WIND_CHILL"
	RiskPoorVisibility RiskType = "POOR_VISIBILITY"
)

// RiskDetail carries the category-specific payload of a risk finding. Each
// rule produces exactly one detail variant, so consumers can type-switch
// instead of probing a generic field bag.
type RiskDetail interface {
	riskDetail()
}

type ThunderDetail struct {
	Level ThunderLevel `json:"thunder_level"`
}

type CAPEDetail struct {
	CAPEJkg float64 `json:"cape_jkg"`
}

type WindDetail struct {
	WindKmh float64 `json:"wind_kmh"`
}

type GustDetail struct {
	GustKmh float64 `json:"gust_kmh"`
}

type RainDetail struct {
	AmountMM float64 `json:"amount_mm"`
}

type RainProbabilityDetail struct {
	ProbabilityPct float64 `json:"probability_pct"`
}

type WindChillDetail struct {
	WindChillC float64 `json:"wind_chill_c"`
}

type VisibilityDetail struct {
	VisibilityM float64 `json:"visibility_m"`
}

func (ThunderDetail) riskDetail()         {}
func (CAPEDetail) riskDetail()            {}
func (WindDetail) riskDetail()            {}
func (GustDetail) riskDetail()            {}
func (RainDetail) riskDetail()            {}
func (RainProbabilityDetail) riskDetail() {}
func (WindChillDetail) riskDetail()       {}
func (VisibilityDetail) riskDetail()      {}

// Risk is one typed finding produced by the risk engine. Never mutated after
// creation.
type Risk struct {
	Type   RiskType   `json:"type"`
	Level  RiskLevel  `json:"level"`
	Detail RiskDetail `json:"detail,omitempty"`
}

// RiskAssessment is the deduplicated, severity-sorted result for one segment:
// at most one Risk per category, highest severity first.
type RiskAssessment struct {
	SegmentID int    `json:"segment_id"`
	Risks     []Risk `json:"risks"`
}

// MaxLevel returns the highest severity present, or LOW when there are no
// findings.
func (a *RiskAssessment) MaxLevel() RiskLevel {
	max := RiskLow
	for _, r := range a.Risks {
		if r.Level > max {
			max = r.Level
		}
	}
	return max
}
