package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/pkg/logger"
)

const testStart int64 = 1704067200 // 2024-01-01T00:00:00Z

func ptr(v float64) *float64 { return &v }

func column(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = ptr(v + float64(i))
	}
	return out
}

func openMeteoFixture(hours int) OpenMeteoResponse {
	times := make([]int64, hours)
	for i := range times {
		times[i] = testStart + int64(i)*3600
	}
	return OpenMeteoResponse{
		Latitude:             6.125,
		Longitude:            125.125,
		Elevation:            18,
		UTCOffsetSeconds:     28800,
		Timezone:             "Asia/Manila",
		TimezoneAbbreviation: "PST",
		Current: OpenMeteoCurrent{
			Time:                testStart + 15*60,
			Temperature2m:       ptr(29.4),
			RelativeHumidity2m:  ptr(74),
			ApparentTemperature: ptr(33.1),
			Precipitation:       ptr(0.2),
			CloudCover:          ptr(63),
			SurfacePressure:     ptr(1008.4),
			WindSpeed10m:        ptr(9.7),
			WindDirection10m:    ptr(212),
		},
		Hourly: OpenMeteoHourly{
			Time:                     times,
			Temperature2m:            column(hours, 20),
			RelativeHumidity2m:       column(hours, 60),
			ApparentTemperature:      column(hours, 22),
			PrecipitationProbability: column(hours, 0),
			Precipitation:            column(hours, 0),
			SurfacePressure:          column(hours, 1000),
			CloudCover:               column(hours, 10),
		},
	}
}

func serveJSON(t *testing.T, status int, payload any, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch p := payload.(type) {
		case string:
			w.Write([]byte(p))
		default:
			require.NoError(t, json.NewEncoder(w).Encode(p))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenMeteoRepository_Name(t *testing.T) {
	repo := &OpenMeteoRepository{}
	assert.Equal(t, "open-meteo", repo.Name())
}

func TestOpenMeteoRepository_FetchForecast_Success(t *testing.T) {
	fixture := openMeteoFixture(168)
	fixture.Hourly.PrecipitationProbability[100] = nil
	fixture.Current.WindDirection10m = nil

	var query url.Values
	srv := serveJSON(t, http.StatusOK, fixture, func(r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		query = r.URL.Query()
	})

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)

	forecast, err := repo.FetchForecast(context.Background(), 6.1164, 125.1716)
	require.NoError(t, err)

	assert.Equal(t, "6.1164", query.Get("latitude"))
	assert.Equal(t, "125.1716", query.Get("longitude"))
	assert.Equal(t, "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,cloud_cover,surface_pressure,wind_speed_10m,wind_direction_10m", query.Get("current"))
	assert.Equal(t, "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation_probability,precipitation,surface_pressure,cloud_cover", query.Get("hourly"))
	assert.Equal(t, "auto", query.Get("timezone"))
	assert.Equal(t, "unixtime", query.Get("timeformat"))
	assert.Equal(t, "7", query.Get("forecast_days"))

	assert.Equal(t, "open-meteo", forecast.RepositoryName)
	assert.Equal(t, "Asia/Manila", forecast.Timezone)
	assert.Equal(t, "PST", forecast.TimezoneAbbreviation)
	assert.Equal(t, 28800, forecast.UTCOffsetSeconds)
	assert.Equal(t, 6.125, forecast.Latitude)
	assert.Equal(t, 18.0, forecast.Elevation)

	h := forecast.Hourly
	assert.Equal(t, testStart, h.Start)
	assert.Equal(t, testStart+168*3600, h.End)
	assert.Equal(t, int64(3600), h.Interval)
	assert.Equal(t, 168, h.Len())
	assert.Len(t, h.CloudCover, 168)
	assert.Equal(t, 20.0, h.Temperature[0])
	assert.Equal(t, 1001.0, h.SurfacePressure[1])
	assert.True(t, math.IsNaN(h.PrecipitationProbability[100]))

	c := forecast.Current
	assert.Equal(t, 29.4, c.Temperature)
	assert.Equal(t, 33.1, c.ApparentTemperature)
	assert.Equal(t, 1008.4, c.SurfacePressure)
	assert.Equal(t, 9.7, c.WindSpeed)
	assert.True(t, math.IsNaN(c.WindDirection))
	require.NotNil(t, c.Time)
	assert.True(t, c.Time.Equal(time.Unix(testStart+900, 0)))
}

func TestOpenMeteoRepository_FetchForecast_APIError(t *testing.T) {
	srv := serveJSON(t, http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range of -90 to 90°. Given: 100.0."}`, nil)

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := repo.FetchForecast(context.Background(), 100, 0)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Reason, "Latitude must be in range")
}

func TestOpenMeteoRepository_FetchForecast_HTTPError(t *testing.T) {
	srv := serveJSON(t, http.StatusServiceUnavailable, "upstream down", nil)

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := repo.FetchForecast(context.Background(), 1, 1)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Empty(t, statusErr.Reason)
}

func TestOpenMeteoRepository_FetchForecast_InvalidJSON(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, "invalid json", nil)

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := repo.FetchForecast(context.Background(), 1, 1)
	assert.Error(t, err)
}

func TestOpenMeteoRepository_FetchForecast_NoHourlyData(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, openMeteoFixture(0), nil)

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := repo.FetchForecast(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hourly forecast data")
}

func TestOpenMeteoRepository_FetchForecast_IrregularAxis(t *testing.T) {
	fixture := openMeteoFixture(5)
	fixture.Hourly.Time[3] += 60
	srv := serveJSON(t, http.StatusOK, fixture, nil)

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := repo.FetchForecast(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "irregular at index 3")
}

func TestOpenMeteoRepository_FetchForecast_SingleSample(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, openMeteoFixture(1), nil)

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)
	forecast, err := repo.FetchForecast(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), forecast.Hourly.Interval)
	assert.Equal(t, 1, forecast.Hourly.Len())
}

func TestOpenMeteoRepository_FetchForecast_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	repo := NewOpenMeteoRepository(srv.URL, 7, logger.NewZapLogger("test-app"), http.DefaultClient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FetchForecast(ctx, 1, 1)
	assert.Error(t, err)
}
