// Package providers contains the concrete weather forecast clients behind
// the types.WeatherProvider interface.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/routecast/routecast-backend/types"
)

const openMeteoDefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoClient fetches hourly forecasts from the Open-Meteo API and
// normalizes them into the provider-agnostic timeseries shape.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteoClient creates a client. An empty baseURL selects the public
// Open-Meteo endpoint.
func NewOpenMeteoClient(baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = openMeteoDefaultBaseURL
	}
	return &OpenMeteoClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *OpenMeteoClient) Name() string {
	return "open-meteo"
}

// FetchForecast requests hourly data covering [start, end] and returns only
// the samples inside that window.
func (c *OpenMeteoClient) FetchForecast(ctx context.Context, lat, lon float64, start, end time.Time) (*types.ForecastTimeseries, error) {
	params := url.Values{}
	params.Add("latitude", fmt.Sprintf("%f", lat))
	params.Add("longitude", fmt.Sprintf("%f", lon))
	params.Add("hourly", "temperature_2m,relative_humidity_2m,dew_point_2m,surface_pressure,"+
		"cloud_cover,wind_speed_10m,wind_gusts_10m,wind_direction_10m,precipitation,"+
		"precipitation_probability,snowfall,visibility,cape,uv_index,weather_code")
	params.Add("windspeed_unit", "kmh")
	params.Add("timezone", "UTC")
	params.Add("start_date", start.UTC().Format("2006-01-02"))
	params.Add("end_date", end.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo API error: %s", resp.Status)
	}

	var forecast struct {
		Hourly struct {
			Time                     []string   `json:"time"`
			Temperature2m            []*float64 `json:"temperature_2m"`
			RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
			DewPoint2m               []*float64 `json:"dew_point_2m"`
			SurfacePressure          []*float64 `json:"surface_pressure"`
			CloudCover               []*float64 `json:"cloud_cover"`
			WindSpeed10m             []*float64 `json:"wind_speed_10m"`
			WindGusts10m             []*float64 `json:"wind_gusts_10m"`
			WindDirection10m         []*float64 `json:"wind_direction_10m"`
			Precipitation            []*float64 `json:"precipitation"`
			PrecipitationProbability []*float64 `json:"precipitation_probability"`
			Snowfall                 []*float64 `json:"snowfall"`
			Visibility               []*float64 `json:"visibility"`
			CAPE                     []*float64 `json:"cape"`
			UVIndex                  []*float64 `json:"uv_index"`
			WeatherCode              []*int     `json:"weather_code"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, err
	}

	ts := &types.ForecastTimeseries{
		Provider: c.Name(),
		Lat:      lat,
		Lon:      lon,
	}
	h := forecast.Hourly
	for i := range h.Time {
		timestamp, err := time.Parse("2006-01-02T15:04", h.Time[i])
		if err != nil {
			return nil, fmt.Errorf("failed to parse time: %w", err)
		}
		timestamp = timestamp.UTC()
		if timestamp.Before(start.Truncate(time.Hour)) || timestamp.After(end) {
			continue
		}
		sample := types.HourlySample{
			Time:               timestamp,
			TemperatureC:       at(h.Temperature2m, i),
			HumidityPct:        at(h.RelativeHumidity2m, i),
			DewpointC:          at(h.DewPoint2m, i),
			PressureHPa:        at(h.SurfacePressure, i),
			CloudCoverPct:      at(h.CloudCover, i),
			WindKmh:            at(h.WindSpeed10m, i),
			GustKmh:            at(h.WindGusts10m, i),
			WindDirDeg:         at(h.WindDirection10m, i),
			PrecipitationMM:    at(h.Precipitation, i),
			RainProbabilityPct: at(h.PrecipitationProbability, i),
			SnowfallCM:         at(h.Snowfall, i),
			VisibilityM:        at(h.Visibility, i),
			CAPEJkg:            at(h.CAPE, i),
			UVIndex:            at(h.UVIndex, i),
		}
		if i < len(h.WeatherCode) && h.WeatherCode[i] != nil {
			code := *h.WeatherCode[i]
			level := thunderLevelFromCode(code)
			sample.ThunderLevel = &level
			sample.PrecipType = precipTypeFromCode(code)
		}
		ts.Samples = append(ts.Samples, sample)
	}
	return ts, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// thunderLevelFromCode maps WMO weather codes to an ordinal thunder level.
// 95 is thunderstorm, 96/99 thunderstorm with hail.
func thunderLevelFromCode(code int) types.ThunderLevel {
	switch code {
	case 96, 99:
		return types.ThunderHigh
	case 95:
		return types.ThunderMed
	default:
		return types.ThunderNone
	}
}

// precipTypeFromCode maps WMO weather codes to a precipitation form.
func precipTypeFromCode(code int) types.PrecipitationType {
	switch {
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return types.PrecipSnow
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82) || code == 95 || code == 96 || code == 99:
		return types.PrecipRain
	default:
		return types.PrecipNone
	}
}
