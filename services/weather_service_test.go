package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/routecast/routecast-backend/errors"
	"github.com/routecast/routecast-backend/internal/cache"
	"github.com/routecast/routecast-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider replays a fixed timeseries and counts calls.
type fakeProvider struct {
	samples []types.HourlySample
	err     error
	calls   int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchForecast(_ context.Context, lat, lon float64, start, end time.Time) (*types.ForecastTimeseries, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &types.ForecastTimeseries{Samples: p.samples}, nil
}

func hourly(temp, wind float64) types.HourlySample {
	return types.HourlySample{TemperatureC: &temp, WindKmh: &wind}
}

func newTestWeatherService(t *testing.T, p types.WeatherProvider) *WeatherService {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := cache.NewWithRegistry(time.Hour, 10, reg)
	return NewWeatherServiceWithRegistry(p, c, reg)
}

func testSegment(id int) types.TripSegment {
	start := time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)
	return types.TripSegment{
		ID:         id,
		StartPoint: types.TrackPoint{Lat: 47.0, Lon: 11.0},
		EndPoint:   types.TrackPoint{Lat: 47.02, Lon: 11.0},
		StartTime:  start,
		EndTime:    start.Add(4 * time.Hour),
	}
}

func TestFetchSegmentWeather(t *testing.T) {
	p := &fakeProvider{samples: []types.HourlySample{hourly(10, 20), hourly(14, 30)}}
	svc := newTestWeatherService(t, p)

	data, err := svc.FetchSegmentWeather(context.Background(), testSegment(1))
	require.NoError(t, err)
	assert.Equal(t, "fake", data.Provider)
	require.NotNil(t, data.Summary.TempAvgC)
	assert.InDelta(t, 12, *data.Summary.TempAvgC, 1e-9)
	require.NotNil(t, data.Summary.WindMaxKmh)
	assert.InDelta(t, 30, *data.Summary.WindMaxKmh, 1e-9)
}

func TestFetchSegmentWeatherUsesCache(t *testing.T) {
	p := &fakeProvider{samples: []types.HourlySample{hourly(10, 20)}}
	svc := newTestWeatherService(t, p)
	seg := testSegment(1)

	first, err := svc.FetchSegmentWeather(context.Background(), seg)
	require.NoError(t, err)
	second, err := svc.FetchSegmentWeather(context.Background(), seg)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Same(t, first, second)
}

func TestFetchSegmentWeatherProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.NewProviderError("open-meteo", fmt.Errorf("connection refused"))}
	svc := newTestWeatherService(t, p)

	_, err := svc.FetchSegmentWeather(context.Background(), testSegment(1))
	assert.Error(t, err)
}

func TestFetchTripWeatherSkipsFailures(t *testing.T) {
	p := &fakeProvider{err: errors.NewProviderError("open-meteo", fmt.Errorf("boom"))}
	svc := newTestWeatherService(t, p)

	out := svc.FetchTripWeather(context.Background(), []types.TripSegment{testSegment(1), testSegment(2)})
	assert.Empty(t, out)
	assert.Equal(t, 2, p.calls)
}

func TestAggregateSummaryStatistics(t *testing.T) {
	precip := func(mm float64) *float64 { return &mm }
	samples := []types.HourlySample{
		{TemperatureC: ptr(4), WindKmh: ptr(10), PrecipitationMM: precip(1.5)},
		{TemperatureC: ptr(8), WindKmh: ptr(25), PrecipitationMM: precip(0.5)},
		{TemperatureC: ptr(6), WindKmh: ptr(40), PrecipitationMM: precip(2.0)},
	}
	sum := AggregateSummary(&types.ForecastTimeseries{Samples: samples})

	assert.InDelta(t, 4, *sum.TempMinC, 1e-9)
	assert.InDelta(t, 8, *sum.TempMaxC, 1e-9)
	assert.InDelta(t, 6, *sum.TempAvgC, 1e-9)
	assert.InDelta(t, 40, *sum.WindMaxKmh, 1e-9)
	assert.InDelta(t, 4.0, *sum.PrecipitationSumMM, 1e-9)

	assert.Equal(t, types.AggMin, sum.Aggregations["temp_min_c"])
	assert.Equal(t, types.AggMax, sum.Aggregations["wind_max_kmh"])
	assert.Equal(t, types.AggSum, sum.Aggregations["precipitation_sum_mm"])
	assert.Equal(t, types.AggAvg, sum.Aggregations["temp_avg_c"])
}

func TestAggregateSummaryMissingMetricsStayNil(t *testing.T) {
	samples := []types.HourlySample{
		{TemperatureC: ptr(5)},
		{},
		{TemperatureC: ptr(7)},
	}
	sum := AggregateSummary(&types.ForecastTimeseries{Samples: samples})

	require.NotNil(t, sum.TempAvgC)
	assert.InDelta(t, 6, *sum.TempAvgC, 1e-9)
	assert.Nil(t, sum.GustMaxKmh)
	assert.Nil(t, sum.CAPEMaxJkg)
	_, ok := sum.Aggregations["gust_max_kmh"]
	assert.False(t, ok)
}

func TestAggregateSummaryEmpty(t *testing.T) {
	sum := AggregateSummary(nil)
	assert.Nil(t, sum.TempAvgC)
	assert.Empty(t, sum.Aggregations)

	sum = AggregateSummary(&types.ForecastTimeseries{})
	assert.Nil(t, sum.TempAvgC)
}

func TestAggregateSummaryThunderMax(t *testing.T) {
	none := types.ThunderNone
	med := types.ThunderMed
	high := types.ThunderHigh
	samples := []types.HourlySample{
		{ThunderLevel: &none},
		{ThunderLevel: &high},
		{ThunderLevel: &med},
	}
	sum := AggregateSummary(&types.ForecastTimeseries{Samples: samples})
	require.NotNil(t, sum.ThunderLevelMax)
	assert.Equal(t, types.ThunderHigh, *sum.ThunderLevelMax)
}

func TestAggregateSummaryWindChill(t *testing.T) {
	samples := []types.HourlySample{
		{TemperatureC: ptr(-5), WindKmh: ptr(30)},
		{TemperatureC: ptr(15), WindKmh: ptr(30)}, // above validity range, passthrough
	}
	sum := AggregateSummary(&types.ForecastTimeseries{Samples: samples})
	require.NotNil(t, sum.WindChillMinC)
	assert.Less(t, *sum.WindChillMinC, -5.0)

	assert.InDelta(t, 15, windChillC(15, 30), 1e-9)
	assert.InDelta(t, -5, windChillC(-5, 3), 1e-9)
}

func TestAggregateSummaryCircularWindDirection(t *testing.T) {
	samples := []types.HourlySample{
		{WindDirDeg: ptr(350)},
		{WindDirDeg: ptr(10)},
	}
	sum := AggregateSummary(&types.ForecastTimeseries{Samples: samples})
	require.NotNil(t, sum.WindDirAvgDeg)
	// Naive averaging would give 180.
	assert.InDelta(t, 0, *sum.WindDirAvgDeg, 1e-6)
}

func TestAggregateSummaryDominantPrecipType(t *testing.T) {
	samples := []types.HourlySample{
		{PrecipType: types.PrecipRain, PrecipitationMM: ptr(1)},
		{PrecipType: types.PrecipSnow, PrecipitationMM: ptr(4)},
		{PrecipType: types.PrecipRain, PrecipitationMM: ptr(2)},
	}
	sum := AggregateSummary(&types.ForecastTimeseries{Samples: samples})
	assert.Equal(t, types.PrecipSnow, sum.PrecipTypeDominant)
}
