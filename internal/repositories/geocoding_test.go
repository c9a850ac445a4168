package repositories

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/config"
	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

func TestNominatimGeocoder_Geocode(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `[{"lat":"6.1164","lon":"125.1716","name":"General Santos","display_name":"General Santos, South Cotabato, Philippines"}]`, func(r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "General Santos", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "en", r.URL.Query().Get("accept-language"))
	})

	g := NewNominatimGeocoder(srv.URL, "en", logger.NewZapLogger("test-app"), http.DefaultClient)
	loc, err := g.Geocode(context.Background(), "General Santos")
	require.NoError(t, err)

	assert.Equal(t, "General Santos", loc.Name)
	assert.Equal(t, "General Santos, South Cotabato, Philippines", loc.DisplayName)
	assert.Equal(t, 6.1164, loc.Latitude)
	assert.Equal(t, 125.1716, loc.Longitude)
}

func TestNominatimGeocoder_NameFromDisplayName(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `[{"lat":"59.91","lon":"10.75","display_name":"Oslo, Norway"}]`, nil)

	g := NewNominatimGeocoder(srv.URL, "", logger.NewZapLogger("test-app"), http.DefaultClient)
	loc, err := g.Geocode(context.Background(), "oslo")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", loc.Name)
}

func TestNominatimGeocoder_NotFound(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `[]`, nil)

	g := NewNominatimGeocoder(srv.URL, "en", logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestNominatimGeocoder_BadCoordinates(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `[{"lat":"north","lon":"10.75","name":"X"}]`, nil)

	g := NewNominatimGeocoder(srv.URL, "en", logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := g.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocationNotFound)
}

func TestNominatimGeocoder_ErrorEnvelope(t *testing.T) {
	srv := serveJSON(t, http.StatusForbidden, `{"error":{"code":403,"message":"Access blocked"}}`, nil)

	g := NewNominatimGeocoder(srv.URL, "en", logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := g.Geocode(context.Background(), "x")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "Access blocked", statusErr.Reason)
	assert.Equal(t, "nominatim", statusErr.Repository)
}

func TestOpenMeteoGeocoder_Geocode(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"results":[{"name":"Berlin","latitude":52.52437,"longitude":13.41053,"admin1":"Land Berlin","country":"Germany"}]}`, func(r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Berlin", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
	})

	g := NewOpenMeteoGeocoder(srv.URL, "", logger.NewZapLogger("test-app"), http.DefaultClient)
	loc, err := g.Geocode(context.Background(), "Berlin")
	require.NoError(t, err)

	assert.Equal(t, "Berlin", loc.Name)
	assert.Equal(t, "Berlin, Land Berlin, Germany", loc.DisplayName)
	assert.Equal(t, 52.52437, loc.Latitude)
}

func TestOpenMeteoGeocoder_NotFound(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"generationtime_ms":0.5}`, nil)

	g := NewOpenMeteoGeocoder(srv.URL, "en", logger.NewZapLogger("test-app"), http.DefaultClient)
	_, err := g.Geocode(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

type countingGeocoder struct {
	calls int
}

func (c *countingGeocoder) Name() string { return "counting" }

func (c *countingGeocoder) Geocode(ctx context.Context, query string) (models.Location, error) {
	c.calls++
	return models.Location{Name: query}, nil
}

func TestRateLimitedGeocoder_Spacing(t *testing.T) {
	inner := &countingGeocoder{}
	g := NewRateLimitedGeocoder(inner, 20, 1)
	assert.Equal(t, "counting", g.Name())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := g.Geocode(context.Background(), "x")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, inner.calls)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateLimitedGeocoder_ContextCancelled(t *testing.T) {
	inner := &countingGeocoder{}
	g := NewRateLimitedGeocoder(inner, 0.001, 1)

	_, err := g.Geocode(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Geocode(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestInitRepositories(t *testing.T) {
	cfg := config.Default()
	l := logger.NewZapLogger("test-app")

	geocoder, forecasts, err := InitRepositories(cfg, http.DefaultClient, l)
	require.NoError(t, err)
	assert.Equal(t, "nominatim", geocoder.Name())
	assert.IsType(t, &RateLimitedGeocoder{}, geocoder)
	assert.Equal(t, "open-meteo", forecasts.Name())

	cfg.Geocoder.Provider = "unknown"
	_, _, err = InitRepositories(cfg, http.DefaultClient, l)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Weather.Provider = "unknown"
	_, _, err = InitRepositories(cfg, http.DefaultClient, l)
	assert.Error(t, err)
}

func TestInitRepositories_ProviderEndpoints(t *testing.T) {
	l := logger.NewZapLogger("test-app")

	t.Run("nominatim", func(t *testing.T) {
		cfg := config.Default()

		geocoder, forecasts, err := InitRepositories(cfg, http.DefaultClient, l)
		require.NoError(t, err)

		limited, ok := geocoder.(*RateLimitedGeocoder)
		require.True(t, ok)
		nominatim, ok := limited.geocoder.(*NominatimGeocoder)
		require.True(t, ok)
		assert.Equal(t, NominatimBaseURL, nominatim.baseURL)

		openMeteo, ok := forecasts.(*OpenMeteoRepository)
		require.True(t, ok)
		assert.Equal(t, OpenMeteoBaseURL, openMeteo.baseURL)
	})

	t.Run("open-meteo geocoder", func(t *testing.T) {
		cfg := config.Default()
		cfg.Geocoder.Provider = "open-meteo"

		geocoder, _, err := InitRepositories(cfg, http.DefaultClient, l)
		require.NoError(t, err)

		limited, ok := geocoder.(*RateLimitedGeocoder)
		require.True(t, ok)
		openMeteo, ok := limited.geocoder.(*OpenMeteoGeocoder)
		require.True(t, ok)
		assert.Equal(t, OpenMeteoGeocodingBaseURL, openMeteo.baseURL)
	})

	t.Run("openweathermap forecasts", func(t *testing.T) {
		cfg := config.Default()
		cfg.Weather.Provider = "openweathermap"
		cfg.Weather.APIKey = "test-key"

		_, forecasts, err := InitRepositories(cfg, http.DefaultClient, l)
		require.NoError(t, err)

		owm, ok := forecasts.(*WeatherAPIRepository)
		require.True(t, ok)
		assert.Equal(t, WeatherAPIBaseURL, owm.baseURL)
		assert.Equal(t, "test-key", owm.APIKey)

		cfg.Weather.APIKey = ""
		_, _, err = InitRepositories(cfg, http.DefaultClient, l)
		assert.Error(t, err)
	})

	t.Run("explicit base url", func(t *testing.T) {
		cfg := config.Default()
		cfg.Geocoder.Provider = "open-meteo"
		cfg.Geocoder.RateLimit = 0
		cfg.Geocoder.BaseURL = "http://geocoder.local/"

		geocoder, _, err := InitRepositories(cfg, http.DefaultClient, l)
		require.NoError(t, err)

		openMeteo, ok := geocoder.(*OpenMeteoGeocoder)
		require.True(t, ok)
		assert.Equal(t, "http://geocoder.local", openMeteo.baseURL)
	})
}
