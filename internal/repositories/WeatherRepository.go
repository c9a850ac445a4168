package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"weather-dashboard/config"
	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

// ErrLocationNotFound is returned by geocoders when a query matches no place.
var ErrLocationNotFound = errors.New("location not found")

// HTTPClient is the outbound transport. pkg/httpclient.Client and *http.Client both satisfy it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (models.Location, error)
}

type ForecastRepository interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64) (models.Forecast, error)
}

// StatusError is a non-200 upstream answer.
type StatusError struct {
	Repository string
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Repository, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s HTTP error (status %d)", e.Repository, e.StatusCode)
}

// apiErrorBody covers the error envelopes of Open-Meteo ({"error":true,"reason":...}),
// Nominatim ({"error":{"message":...}}) and OpenWeatherMap ({"cod":401,"message":...}).
type apiErrorBody struct {
	Error   json.RawMessage `json:"error"`
	Reason  string          `json:"reason"`
	Message string          `json:"message"`
}

func (b apiErrorBody) message() string {
	if b.Reason != "" {
		return b.Reason
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	return b.Message
}

// getJSON performs a GET and decodes a 200 body into out.
func getJSON(ctx context.Context, client HTTPClient, l *logger.Logger, repo, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	l.Info("received API response", map[string]any{
		"repository": repo,
		"status":     resp.StatusCode,
		"cache":      resp.Header.Get("X-Cache"),
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Repository: repo, StatusCode: resp.StatusCode}
		var apiErr apiErrorBody
		if json.Unmarshal(body, &apiErr) == nil {
			statusErr.Reason = apiErr.message()
		}
		return statusErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// InitRepositories builds the configured geocoder and forecast repository on a shared client.
// Each provider falls back to its own public endpoint when no base URL is configured.
func InitRepositories(cfg *config.Config, client HTTPClient, l *logger.Logger) (Geocoder, ForecastRepository, error) {
	var geocoder Geocoder
	switch cfg.Geocoder.Provider {
	case "nominatim":
		geocoder = NewNominatimGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.Language, l, client)
	case "open-meteo":
		geocoder = NewOpenMeteoGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.Language, l, client)
	default:
		return nil, nil, fmt.Errorf("unsupported geocoder provider %q", cfg.Geocoder.Provider)
	}
	if cfg.Geocoder.RateLimit > 0 {
		geocoder = NewRateLimitedGeocoder(geocoder, cfg.Geocoder.RateLimit, cfg.Geocoder.Burst)
	}

	var forecasts ForecastRepository
	switch cfg.Weather.Provider {
	case "", "open-meteo":
		forecasts = NewOpenMeteoRepository(cfg.Weather.BaseURL, cfg.Weather.ForecastDays, l, client)
	case "openweathermap":
		owm, err := NewWeatherAPIRepository(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.ForecastDays, l, client)
		if err != nil {
			return nil, nil, err
		}
		forecasts = owm
	default:
		return nil, nil, fmt.Errorf("unsupported weather provider %q", cfg.Weather.Provider)
	}

	return geocoder, forecasts, nil
}
