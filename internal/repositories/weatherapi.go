package repositories

import (
	"context"
	"errors"
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
	WeatherAPIBaseURL = "https://api.openweathermap.org"

	// The 5 day forecast is sampled every 3 hours, 40 samples at most.
	weatherAPIInterval   int64 = 3 * 3600
	weatherAPIMaxSamples       = 40
	samplesPerDay              = 8

	metersPerSecondToKmh = 3.6
)

// WeatherAPIRepository reads the OpenWeatherMap 5 day / 3 hour forecast.
// It has no elevation or IANA zone; the zone is a fixed offset named after it.
type WeatherAPIRepository struct {
	baseURL      string
	APIKey       string
	forecastDays int
	httpClient   HTTPClient
	l            *logger.Logger
}

func NewWeatherAPIRepository(baseURL, apiKey string, forecastDays int, l *logger.Logger, httpClient HTTPClient) (*WeatherAPIRepository, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if baseURL == "" {
		baseURL = WeatherAPIBaseURL
	}

	return &WeatherAPIRepository{
		baseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		forecastDays: forecastDays,
		httpClient:   httpClient,
		l:            l,
	}, nil
}

func (w *WeatherAPIRepository) Name() string {
	return "openweathermap"
}

type WeatherAPIItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Pressure  *float64 `json:"pressure"`
		GrndLevel *float64 `json:"grnd_level"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	// Pop is a 0..1 probability.
	Pop  *float64 `json:"pop"`
	Rain struct {
		ThreeHours float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		ThreeHours float64 `json:"3h"`
	} `json:"snow"`
}

type WeatherAPIResponse struct {
	List []WeatherAPIItem `json:"list"`
	City struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		// Timezone is the UTC offset in seconds.
		Timezone int `json:"timezone"`
	} `json:"city"`
}

func (w *WeatherAPIRepository) forecastURL(lat, lon float64) string {
	samples := weatherAPIMaxSamples
	if w.forecastDays > 0 {
		samples = min(w.forecastDays*samplesPerDay, weatherAPIMaxSamples)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("units", "metric")
	q.Set("cnt", strconv.Itoa(samples))
	q.Set("appid", w.APIKey)
	return w.baseURL + "/data/2.5/forecast?" + q.Encode()
}

func (w *WeatherAPIRepository) FetchForecast(ctx context.Context, lat, lon float64) (models.Forecast, error) {
	forecast := models.Forecast{
		RepositoryName: w.Name(),
		Latitude:       lat,
		Longitude:      lon,
		Elevation:      math.NaN(),
	}

	w.l.Info("making weatherapi API request", map[string]any{
		"params": forecast.RequestParams(),
	})

	var response WeatherAPIResponse
	if err := getJSON(ctx, w.httpClient, w.l, w.Name(), w.forecastURL(lat, lon), &response); err != nil {
		return forecast, err
	}

	w.l.Info("parsed API response", map[string]any{
		"items": len(response.List),
		"city":  response.City.Name,
	})

	hourly, err := weatherAPISeries(response.List)
	if err != nil {
		return forecast, fmt.Errorf("failed to build hourly series: %w", err)
	}

	if c := response.City.Coord; c.Lat != 0 || c.Lon != 0 {
		forecast.Latitude = c.Lat
		forecast.Longitude = c.Lon
	}
	forecast.UTCOffsetSeconds = response.City.Timezone
	forecast.TimezoneAbbreviation = offsetName(response.City.Timezone)
	forecast.Current = weatherAPICurrent(response.List[0])
	forecast.Hourly = hourly

	return forecast, nil
}

func weatherAPISeries(items []WeatherAPIItem) (models.HourlySeries, error) {
	times := make([]int64, len(items))
	for i, item := range items {
		times[i] = item.Dt
	}
	series, err := uniformAxis(times, weatherAPIInterval)
	if err != nil {
		return models.HourlySeries{}, err
	}

	n := len(items)
	series.Temperature = make([]float64, n)
	series.RelativeHumidity = make([]float64, n)
	series.ApparentTemperature = make([]float64, n)
	series.PrecipitationProbability = make([]float64, n)
	series.Precipitation = make([]float64, n)
	series.SurfacePressure = make([]float64, n)
	series.CloudCover = make([]float64, n)

	for i, item := range items {
		series.Temperature[i] = value(item.Main.Temp)
		series.RelativeHumidity[i] = value(item.Main.Humidity)
		series.ApparentTemperature[i] = value(item.Main.FeelsLike)
		series.PrecipitationProbability[i] = value(item.Pop) * 100
		series.Precipitation[i] = item.Rain.ThreeHours + item.Snow.ThreeHours
		series.SurfacePressure[i] = surfacePressure(item)
		series.CloudCover[i] = value(item.Clouds.All)
	}
	return series, nil
}

// weatherAPICurrent uses the first forecast sample; the endpoint reports no observation.
func weatherAPICurrent(item WeatherAPIItem) models.CurrentConditions {
	t := time.Unix(item.Dt, 0).UTC()
	return models.CurrentConditions{
		Time:                &t,
		Temperature:         value(item.Main.Temp),
		RelativeHumidity:    value(item.Main.Humidity),
		ApparentTemperature: value(item.Main.FeelsLike),
		Precipitation:       item.Rain.ThreeHours + item.Snow.ThreeHours,
		CloudCover:          value(item.Clouds.All),
		SurfacePressure:     surfacePressure(item),
		WindSpeed:           value(item.Wind.Speed) * metersPerSecondToKmh,
		WindDirection:       value(item.Wind.Deg),
	}
}

// surfacePressure prefers ground level pressure, falling back to sea level.
func surfacePressure(item WeatherAPIItem) float64 {
	if item.Main.GrndLevel != nil {
		return *item.Main.GrndLevel
	}
	return value(item.Main.Pressure)
}

// offsetName renders a UTC offset as "UTC", "UTC+08:00" or "UTC-03:30".
func offsetName(seconds int) string {
	if seconds == 0 {
		return "UTC"
	}
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, seconds/3600, seconds%3600/60)
}
