package repositories

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

const (
	OpenMeteoBaseURL = "https://api.open-meteo.com"

	defaultHourlyInterval int64 = 3600
)

// Variable lists sent to the forecast endpoint.
var (
	openMeteoCurrent = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"apparent_temperature",
		"precipitation",
		"cloud_cover",
		"surface_pressure",
		"wind_speed_10m",
		"wind_direction_10m",
	}
	openMeteoHourly = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"apparent_temperature",
		"precipitation_probability",
		"precipitation",
		"surface_pressure",
		"cloud_cover",
	}
)

type OpenMeteoRepository struct {
	baseURL      string
	forecastDays int
	httpClient   HTTPClient
	l            *logger.Logger
}

func NewOpenMeteoRepository(baseURL string, forecastDays int, l *logger.Logger, httpClient HTTPClient) *OpenMeteoRepository {
	if baseURL == "" {
		baseURL = OpenMeteoBaseURL
	}
	return &OpenMeteoRepository{
		baseURL:      strings.TrimRight(baseURL, "/"),
		forecastDays: forecastDays,
		httpClient:   httpClient,
		l:            l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return "open-meteo"
}

type OpenMeteoCurrent struct {
	Time                int64    `json:"time"`
	Temperature2m       *float64 `json:"temperature_2m"`
	RelativeHumidity2m  *float64 `json:"relative_humidity_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	Precipitation       *float64 `json:"precipitation"`
	CloudCover          *float64 `json:"cloud_cover"`
	SurfacePressure     *float64 `json:"surface_pressure"`
	WindSpeed10m        *float64 `json:"wind_speed_10m"`
	WindDirection10m    *float64 `json:"wind_direction_10m"`
}

type OpenMeteoHourly struct {
	Time                     []int64    `json:"time"`
	Temperature2m            []*float64 `json:"temperature_2m"`
	RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
	ApparentTemperature      []*float64 `json:"apparent_temperature"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	Precipitation            []*float64 `json:"precipitation"`
	SurfacePressure          []*float64 `json:"surface_pressure"`
	CloudCover               []*float64 `json:"cloud_cover"`
}

type OpenMeteoResponse struct {
	Latitude             float64          `json:"latitude"`
	Longitude            float64          `json:"longitude"`
	Elevation            float64          `json:"elevation"`
	UTCOffsetSeconds     int              `json:"utc_offset_seconds"`
	Timezone             string           `json:"timezone"`
	TimezoneAbbreviation string           `json:"timezone_abbreviation"`
	Current              OpenMeteoCurrent `json:"current"`
	Hourly               OpenMeteoHourly  `json:"hourly"`
}

func (o *OpenMeteoRepository) forecastURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", strings.Join(openMeteoCurrent, ","))
	q.Set("hourly", strings.Join(openMeteoHourly, ","))
	q.Set("timezone", "auto")
	q.Set("timeformat", "unixtime")
	if o.forecastDays > 0 {
		q.Set("forecast_days", strconv.Itoa(o.forecastDays))
	}
	return o.baseURL + "/v1/forecast?" + q.Encode()
}

func (o *OpenMeteoRepository) FetchForecast(ctx context.Context, lat, lon float64) (models.Forecast, error) {
	forecast := models.Forecast{
		RepositoryName: o.Name(),
		Latitude:       lat,
		Longitude:      lon,
	}

	o.l.Info("making openmeteo API request", map[string]any{
		"params": forecast.RequestParams(),
		"days":   o.forecastDays,
	})

	var response OpenMeteoResponse
	if err := getJSON(ctx, o.httpClient, o.l, o.Name(), o.forecastURL(lat, lon), &response); err != nil {
		return forecast, err
	}

	o.l.Info("parsed API response", map[string]any{
		"hours":    len(response.Hourly.Time),
		"timezone": response.Timezone,
	})

	hourly, err := hourlySeries(response.Hourly)
	if err != nil {
		return forecast, fmt.Errorf("failed to build hourly series: %w", err)
	}

	forecast.Latitude = response.Latitude
	forecast.Longitude = response.Longitude
	forecast.Elevation = response.Elevation
	forecast.Timezone = response.Timezone
	forecast.TimezoneAbbreviation = response.TimezoneAbbreviation
	forecast.UTCOffsetSeconds = response.UTCOffsetSeconds
	forecast.Current = currentConditions(response.Current)
	forecast.Hourly = hourly

	return forecast, nil
}

// hourlySeries copies the metric columns onto the uniform time axis. Their lengths are
// checked when the table is built.
func hourlySeries(h OpenMeteoHourly) (models.HourlySeries, error) {
	series, err := uniformAxis(h.Time, defaultHourlyInterval)
	if err != nil {
		return models.HourlySeries{}, err
	}

	series.Temperature = values(h.Temperature2m)
	series.RelativeHumidity = values(h.RelativeHumidity2m)
	series.ApparentTemperature = values(h.ApparentTemperature)
	series.PrecipitationProbability = values(h.PrecipitationProbability)
	series.Precipitation = values(h.Precipitation)
	series.SurfacePressure = values(h.SurfacePressure)
	series.CloudCover = values(h.CloudCover)
	return series, nil
}

// uniformAxis derives start/end/interval from a list of sample times. The step must be constant;
// a single sample uses fallback as its interval.
func uniformAxis(times []int64, fallback int64) (models.HourlySeries, error) {
	if len(times) == 0 {
		return models.HourlySeries{}, fmt.Errorf("no hourly forecast data available")
	}

	interval := fallback
	if len(times) > 1 {
		interval = times[1] - times[0]
	}
	if interval <= 0 {
		return models.HourlySeries{}, fmt.Errorf("hourly time axis is not increasing")
	}
	start := times[0]
	for i, ts := range times {
		if ts != start+int64(i)*interval {
			return models.HourlySeries{}, fmt.Errorf("hourly time axis is irregular at index %d", i)
		}
	}

	return models.HourlySeries{
		Start:    start,
		End:      times[len(times)-1] + interval,
		Interval: interval,
	}, nil
}

func currentConditions(c OpenMeteoCurrent) models.CurrentConditions {
	cur := models.CurrentConditions{
		Temperature:         value(c.Temperature2m),
		RelativeHumidity:    value(c.RelativeHumidity2m),
		ApparentTemperature: value(c.ApparentTemperature),
		Precipitation:       value(c.Precipitation),
		CloudCover:          value(c.CloudCover),
		SurfacePressure:     value(c.SurfacePressure),
		WindSpeed:           value(c.WindSpeed10m),
		WindDirection:       value(c.WindDirection10m),
	}
	if c.Time != 0 {
		t := time.Unix(c.Time, 0).UTC()
		cur.Time = &t
	}
	return cur
}

func value(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func values(vs []*float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = value(v)
	}
	return out
}
