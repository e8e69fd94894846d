package services

import (
	"context"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/routecast/routecast-backend/internal/cache"
	"github.com/routecast/routecast-backend/logger"
	"github.com/routecast/routecast-backend/types"
)

type WeatherMetrics struct {
	fetchLatency prometheus.Histogram
	fetchErrors  prometheus.Counter
}

// WeatherService attaches an aggregated weather summary to each trip
// segment, going through the weather cache before hitting the provider.
type WeatherService struct {
	provider types.WeatherProvider
	cache    *cache.WeatherCache
	metrics  *WeatherMetrics
	now      func() time.Time
}

func NewWeatherService(provider types.WeatherProvider, c *cache.WeatherCache) *WeatherService {
	return NewWeatherServiceWithRegistry(provider, c, prometheus.DefaultRegisterer)
}

func NewWeatherServiceWithRegistry(provider types.WeatherProvider, c *cache.WeatherCache, reg prometheus.Registerer) *WeatherService {
	metrics := &WeatherMetrics{
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routecast_provider_fetch_duration_seconds",
			Help:    "Time taken to fetch a segment forecast from the provider",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routecast_provider_fetch_errors_total",
			Help: "Total number of provider fetch errors",
		}),
	}
	reg.MustRegister(metrics.fetchLatency, metrics.fetchErrors)

	return &WeatherService{
		provider: provider,
		cache:    c,
		metrics:  metrics,
		now:      time.Now,
	}
}

// FetchSegmentWeather returns the aggregated weather for one segment,
// serving from cache when the entry is still fresh.
func (s *WeatherService) FetchSegmentWeather(ctx context.Context, seg types.TripSegment) (*types.SegmentWeatherData, error) {
	if data, ok := s.cache.Get(seg); ok {
		return data, nil
	}

	lat, lon := seg.MidPoint()
	startTime := s.now()
	ts, err := s.provider.FetchForecast(ctx, lat, lon, seg.StartTime, seg.EndTime)
	s.metrics.fetchLatency.Observe(time.Since(startTime).Seconds())
	if err != nil {
		s.metrics.fetchErrors.Inc()
		return nil, err
	}

	data := &types.SegmentWeatherData{
		Segment:   seg,
		Summary:   AggregateSummary(ts),
		Provider:  s.provider.Name(),
		FetchedAt: s.now(),
	}
	s.cache.Set(seg, data)
	return data, nil
}

// FetchTripWeather fetches weather for all segments. Segments whose fetch
// fails are logged and skipped: partial results are preferable to an empty
// report when the provider has a bad moment.
func (s *WeatherService) FetchTripWeather(ctx context.Context, segments []types.TripSegment) []types.SegmentWeatherData {
	log := logger.GetLogger()
	out := make([]types.SegmentWeatherData, 0, len(segments))
	for _, seg := range segments {
		data, err := s.FetchSegmentWeather(ctx, seg)
		if err != nil {
			log.Warnw("Failed to fetch segment weather",
				"segmentID", seg.ID,
				"provider", s.provider.Name(),
				"error", err,
			)
			continue
		}
		out = append(out, *data)
	}
	return out
}

// AggregateSummary computes the per-segment scalar summary over an hourly
// timeseries. Metrics absent from every sample stay nil in the summary, and
// each populated field records which statistic produced it.
func AggregateSummary(ts *types.ForecastTimeseries) *types.SegmentWeatherSummary {
	sum := &types.SegmentWeatherSummary{
		Aggregations: make(map[string]types.AggregationFunc),
	}
	if ts == nil || len(ts.Samples) == 0 {
		return sum
	}

	temp := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.TemperatureC })
	wind := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.WindKmh })
	gust := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.GustKmh })
	precip := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.PrecipitationMM })
	cloud := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.CloudCoverPct })
	humidity := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.HumidityPct })
	visibility := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.VisibilityM })
	dewpoint := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.DewpointC })
	pressure := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.PressureHPa })
	rainProb := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.RainProbabilityPct })
	capeVals := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.CAPEJkg })
	uv := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.UVIndex })
	snow := collect(ts.Samples, func(h types.HourlySample) *float64 { return h.SnowfallCM })

	set(sum.Aggregations, "temp_min_c", types.AggMin, &sum.TempMinC, minOf(temp))
	set(sum.Aggregations, "temp_max_c", types.AggMax, &sum.TempMaxC, maxOf(temp))
	set(sum.Aggregations, "temp_avg_c", types.AggAvg, &sum.TempAvgC, avgOf(temp))
	set(sum.Aggregations, "wind_max_kmh", types.AggMax, &sum.WindMaxKmh, maxOf(wind))
	set(sum.Aggregations, "gust_max_kmh", types.AggMax, &sum.GustMaxKmh, maxOf(gust))
	set(sum.Aggregations, "precipitation_sum_mm", types.AggSum, &sum.PrecipitationSumMM, sumOf(precip))
	set(sum.Aggregations, "cloud_cover_avg_pct", types.AggAvg, &sum.CloudCoverAvgPct, avgOf(cloud))
	set(sum.Aggregations, "humidity_avg_pct", types.AggAvg, &sum.HumidityAvgPct, avgOf(humidity))
	set(sum.Aggregations, "visibility_min_m", types.AggMin, &sum.VisibilityMinM, minOf(visibility))
	set(sum.Aggregations, "dewpoint_avg_c", types.AggAvg, &sum.DewpointAvgC, avgOf(dewpoint))
	set(sum.Aggregations, "pressure_avg_hpa", types.AggAvg, &sum.PressureAvgHPa, avgOf(pressure))
	set(sum.Aggregations, "rain_prob_max_pct", types.AggMax, &sum.RainProbMaxPct, maxOf(rainProb))
	set(sum.Aggregations, "cape_max_jkg", types.AggMax, &sum.CAPEMaxJkg, maxOf(capeVals))
	set(sum.Aggregations, "uv_index_max", types.AggMax, &sum.UVIndexMax, maxOf(uv))
	set(sum.Aggregations, "snow_new_sum_cm", types.AggSum, &sum.SnowNewSumCM, sumOf(snow))

	var chill []float64
	for _, h := range ts.Samples {
		if h.TemperatureC != nil && h.WindKmh != nil {
			chill = append(chill, windChillC(*h.TemperatureC, *h.WindKmh))
		}
	}
	set(sum.Aggregations, "wind_chill_min_c", types.AggMin, &sum.WindChillMinC, minOf(chill))

	var maxThunder types.ThunderLevel
	haveThunder := false
	for _, h := range ts.Samples {
		if h.ThunderLevel != nil {
			haveThunder = true
			if *h.ThunderLevel > maxThunder {
				maxThunder = *h.ThunderLevel
			}
		}
	}
	if haveThunder {
		sum.ThunderLevelMax = &maxThunder
		sum.Aggregations["thunder_level_max"] = types.AggMax
	}

	if v := circularMeanDeg(ts.Samples); v != nil {
		sum.WindDirAvgDeg = v
		sum.Aggregations["wind_dir_avg_deg"] = types.AggAvg
	}

	if t := dominantPrecipType(ts.Samples); t != types.PrecipNone {
		sum.PrecipTypeDominant = t
		sum.Aggregations["precip_type_dominant"] = types.AggDominant
	}

	return sum
}

func collect(samples []types.HourlySample, pick func(types.HourlySample) *float64) []float64 {
	var out []float64
	for _, h := range samples {
		if v := pick(h); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func set(aggs map[string]types.AggregationFunc, name string, fn types.AggregationFunc, dst **float64, v *float64) {
	if v == nil {
		return
	}
	*dst = v
	aggs[name] = fn
}

func minOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return &m
}

func maxOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return &m
}

func sumOf(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var s float64
	for _, v := range vals {
		s += v
	}
	return &s
}

func avgOf(vals []float64) *float64 {
	s := sumOf(vals)
	if s == nil {
		return nil
	}
	a := *s / float64(len(vals))
	return &a
}

// windChillC is the North American wind chill index; below the formula's
// validity range (warm or near-calm conditions) the air temperature is
// returned unchanged.
func windChillC(tempC, windKmh float64) float64 {
	if tempC > 10 || windKmh <= 4.8 {
		return tempC
	}
	v := math.Pow(windKmh, 0.16)
	return 13.12 + 0.6215*tempC - 11.37*v + 0.3965*tempC*v
}

// circularMeanDeg averages wind directions on the circle so that 350° and
// 10° average to 0°, not 180°.
func circularMeanDeg(samples []types.HourlySample) *float64 {
	var sinSum, cosSum float64
	n := 0
	for _, h := range samples {
		if h.WindDirDeg == nil {
			continue
		}
		rad := *h.WindDirDeg * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)
		n++
	}
	if n == 0 {
		return nil
	}
	deg := math.Atan2(sinSum/float64(n), cosSum/float64(n)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return &deg
}

// dominantPrecipType picks the precipitation form carrying the most total
// precipitation over the window.
func dominantPrecipType(samples []types.HourlySample) types.PrecipitationType {
	amounts := make(map[types.PrecipitationType]float64)
	for _, h := range samples {
		if h.PrecipType == "" || h.PrecipType == types.PrecipNone {
			continue
		}
		amount := 1.0
		if h.PrecipitationMM != nil {
			amount = *h.PrecipitationMM
		}
		amounts[h.PrecipType] += amount
	}
	best := types.PrecipNone
	bestAmount := 0.0
	for t, a := range amounts {
		if a > bestAmount || (a == bestAmount && t == types.PrecipRain) {
			best = t
			bestAmount = a
		}
	}
	return best
}
