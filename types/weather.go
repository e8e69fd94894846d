package types

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ThunderLevel is an ordinal thunderstorm likelihood derived from provider
// weather codes. Comparisons between levels are ordinal (NONE < MED < HIGH);
// serialization uses the name, never the ordinal, so stored snapshots stay
// readable and forward-compatible.
type ThunderLevel int

const (
	ThunderNone ThunderLevel = iota
	ThunderMed
	ThunderHigh
)

func (l ThunderLevel) String() string {
	switch l {
	case ThunderMed:
		return "MED"
	case ThunderHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

// ParseThunderLevel converts a stored name back into a ThunderLevel.
func ParseThunderLevel(s string) (ThunderLevel, error) {
	switch s {
	case "NONE":
		return ThunderNone, nil
	case "MED":
		return ThunderMed, nil
	case "HIGH":
		return ThunderHigh, nil
	}
	return ThunderNone, fmt.Errorf("unknown thunder level %q", s)
}

func (l ThunderLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *ThunderLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseThunderLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// PrecipitationType is the dominant precipitation form over a time window.
type PrecipitationType string

const (
	PrecipNone PrecipitationType = "NONE"
	PrecipRain PrecipitationType = "RAIN"
	PrecipSnow PrecipitationType = "SNOW"
)

// HourlySample is one normalized hourly forecast value set. Every metric is
// optional because not every provider supplies every field.
type HourlySample struct {
	Time               time.Time `json:"time"`
	TemperatureC       *float64  `json:"temperature_c,omitempty"`
	HumidityPct        *float64  `json:"humidity_pct,omitempty"`
	DewpointC          *float64  `json:"dewpoint_c,omitempty"`
	PressureHPa        *float64  `json:"pressure_hpa,omitempty"`
	CloudCoverPct      *float64  `json:"cloud_cover_pct,omitempty"`
	WindKmh            *float64  `json:"wind_kmh,omitempty"`
	GustKmh            *float64  `json:"gust_kmh,omitempty"`
	WindDirDeg         *float64  `json:"wind_dir_deg,omitempty"`
	PrecipitationMM    *float64  `json:"precipitation_mm,omitempty"`
	RainProbabilityPct *float64  `json:"rain_probability_pct,omitempty"`
	SnowfallCM         *float64  `json:"snowfall_cm,omitempty"`
	VisibilityM        *float64  `json:"visibility_m,omitempty"`
	CAPEJkg            *float64  `json:"cape_jkg,omitempty"`
	UVIndex            *float64  `json:"uv_index,omitempty"`
	ThunderLevel       *ThunderLevel     `json:"thunder_level,omitempty"`
	PrecipType         PrecipitationType `json:"precip_type,omitempty"`
}

// ForecastTimeseries is the normalized hourly output of one provider call.
type ForecastTimeseries struct {
	Provider string         `json:"provider"`
	Lat      float64        `json:"lat"`
	Lon      float64        `json:"lon"`
	Samples  []HourlySample `json:"samples"`
}

// WeatherProvider is the black-box forecast source consumed by the fetch
// layer. Implementations live in internal/providers.
type WeatherProvider interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64, start, end time.Time) (*ForecastTimeseries, error)
}

// AggregationFunc records which statistic produced an aggregated field,
// for audit and serialization.
type AggregationFunc string

const (
	AggMin      AggregationFunc = "min"
	AggMax      AggregationFunc = "max"
	AggAvg      AggregationFunc = "avg"
	AggSum      AggregationFunc = "sum"
	AggDominant AggregationFunc = "dominant"
)

// SegmentWeatherSummary holds the aggregated scalar weather metrics for one
// segment's time window. Nil fields were never computed (missing provider
// data), which is distinct from a computed zero. JSON field names double as
// the on-disk snapshot metric names.
type SegmentWeatherSummary struct {
	TempMinC           *float64           `json:"temp_min_c,omitempty"`
	TempMaxC           *float64           `json:"temp_max_c,omitempty"`
	TempAvgC           *float64           `json:"temp_avg_c,omitempty"`
	WindMaxKmh         *float64           `json:"wind_max_kmh,omitempty"`
	GustMaxKmh         *float64           `json:"gust_max_kmh,omitempty"`
	PrecipitationSumMM *float64           `json:"precipitation_sum_mm,omitempty"`
	CloudCoverAvgPct   *float64           `json:"cloud_cover_avg_pct,omitempty"`
	HumidityAvgPct     *float64           `json:"humidity_avg_pct,omitempty"`
	ThunderLevelMax    *ThunderLevel      `json:"thunder_level_max,omitempty"`
	VisibilityMinM     *float64           `json:"visibility_min_m,omitempty"`
	DewpointAvgC       *float64           `json:"dewpoint_avg_c,omitempty"`
	PressureAvgHPa     *float64           `json:"pressure_avg_hpa,omitempty"`
	WindChillMinC      *float64           `json:"wind_chill_min_c,omitempty"`
	RainProbMaxPct     *float64           `json:"rain_prob_max_pct,omitempty"`
	CAPEMaxJkg         *float64           `json:"cape_max_jkg,omitempty"`
	UVIndexMax         *float64           `json:"uv_index_max,omitempty"`
	SnowNewSumCM       *float64           `json:"snow_new_sum_cm,omitempty"`
	WindDirAvgDeg      *float64           `json:"wind_dir_avg_deg,omitempty"`
	PrecipTypeDominant PrecipitationType  `json:"precip_type_dominant,omitempty"`

	// Aggregations maps metric name to the statistic that produced it.
	Aggregations map[string]AggregationFunc `json:"aggregations,omitempty"`
}

// SegmentWeatherData ties an aggregated summary to the segment it was
// computed for.
type SegmentWeatherData struct {
	Segment   TripSegment            `json:"segment"`
	Summary   *SegmentWeatherSummary `json:"summary,omitempty"`
	Provider  string                 `json:"provider,omitempty"`
	FetchedAt time.Time              `json:"fetched_at,omitempty"`
}

// MetricSpec is one entry of the externally configured threshold catalog.
// RiskThresholds keys are "high", "medium" and "high_lt" (inverted metrics
// where lower is worse, e.g. visibility). Any key may be absent.
type MetricSpec struct {
	RiskThresholds map[string]float64 `yaml:"risk_thresholds" json:"risk_thresholds"`
}

// ThresholdCatalog is the read-only per-metric threshold lookup consumed by
// the risk engine. A missing metric means "no rule configured", never an
// error.
type ThresholdCatalog interface {
	GetMetric(id string) (MetricSpec, bool)
}
