package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	provider := NewFileConfigProvider("nonexistent.yaml")
	config, err := NewConfigWithProvider(provider)
	require.NoError(t, err)
	assert.NotNil(t, config)

	assert.Equal(t, "weather-dashboard", config.App.Name)
	assert.Equal(t, "1.0.0", config.App.Version)
	assert.Equal(t, "development", config.App.Env)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, 10*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, config.Server.IdleTimeout)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "nominatim", config.Geocoder.Provider)
	assert.Equal(t, 5, config.HTTPClient.RetryCount)
	assert.Equal(t, 200*time.Millisecond, config.HTTPClient.RetryWait)
	assert.Equal(t, time.Hour, config.HTTPClient.CacheTTL)
	assert.Equal(t, 24, config.Dashboard.TrendHours)
	assert.False(t, config.SentryEnabled())
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	t.Setenv("APP_NAME", "test-app")
	t.Setenv("APP_VERSION", "2.0.0")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_CLIENT_CACHE_TTL", "15m")
	t.Setenv("GEOCODER_PROVIDER", "open-meteo")
	t.Setenv("GEOCODER_BASE_URL", "https://geocoding-api.open-meteo.com")

	provider := NewFileConfigProvider("nonexistent.yaml")
	config, err := NewConfigWithProvider(provider)
	require.NoError(t, err)

	assert.Equal(t, "test-app", config.App.Name)
	assert.Equal(t, "2.0.0", config.App.Version)
	assert.Equal(t, "production", config.App.Env)
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, 15*time.Minute, config.HTTPClient.CacheTTL)
	assert.Equal(t, "open-meteo", config.Geocoder.Provider)
	assert.True(t, config.IsProduction())
}

func TestConfigFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7070"
weather:
  forecast_days: 10
dashboard:
  default_city: Oslo
http_client:
  retry_wait: 50ms
`), 0o600))

	t.Setenv("DASHBOARD_DEFAULT_CITY", "Bergen")

	config, err := NewConfigWithProvider(NewFileConfigProvider(path))
	require.NoError(t, err)

	assert.Equal(t, "7070", config.Server.Port)
	assert.Equal(t, 10, config.Weather.ForecastDays)
	assert.Equal(t, 50*time.Millisecond, config.HTTPClient.RetryWait)
	assert.Equal(t, "Bergen", config.Dashboard.DefaultCity)
	// untouched by file or env
	assert.Equal(t, "weather-dashboard", config.App.Name)
}

func TestConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WEATHER_FORECAST_DAYS=9\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WEATHER_FORECAST_DAYS") })

	provider := NewFileConfigProvider("nonexistent.yaml").WithEnvFile(envFile)
	config, err := NewConfigWithProvider(provider)
	require.NoError(t, err)
	assert.Equal(t, 9, config.Weather.ForecastDays)

	missing := NewFileConfigProvider("nonexistent.yaml").WithEnvFile(filepath.Join(dir, "absent.env"))
	_, err = NewConfigWithProvider(missing)
	assert.NoError(t, err)
}

func TestConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := NewConfigWithProvider(NewFileConfigProvider(path))
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	provider := NewFileConfigProvider(DefaultConfigFile)

	config := Default()
	assert.NoError(t, provider.Validate(config))

	invalid := Default()
	invalid.App.Name = ""
	invalid.Geocoder.Provider = "google"
	invalid.Weather.ForecastDays = 3
	invalid.Weather.Provider = "darksky"
	invalid.HTTPClient.CacheTTL = 0

	err := provider.Validate(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name is required")
	assert.Contains(t, err.Error(), `geocoder.provider "google" is not supported`)
	assert.Contains(t, err.Error(), "weather.forecast_days must be between 5 and 16")
	assert.Contains(t, err.Error(), "http_client.cache_ttl must be positive")
	assert.Contains(t, err.Error(), `weather.provider "darksky" is not supported`)

	owm := Default()
	owm.Weather.Provider = "openweathermap"
	err = provider.Validate(owm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather.api_key is required for openweathermap")

	owm.Weather.APIKey = "secret"
	assert.NoError(t, provider.Validate(owm))
}

func TestConfigProviderSwitchKeepsProviderEndpoints(t *testing.T) {
	t.Setenv("GEOCODER_PROVIDER", "open-meteo")
	t.Setenv("WEATHER_PROVIDER", "openweathermap")
	t.Setenv("WEATHER_API_KEY", "secret")

	config, err := NewConfigWithProvider(NewFileConfigProvider("nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "open-meteo", config.Geocoder.Provider)
	assert.Empty(t, config.Geocoder.BaseURL)
	assert.Equal(t, "openweathermap", config.Weather.Provider)
	assert.Equal(t, "secret", config.Weather.APIKey)
	assert.Empty(t, config.Weather.BaseURL)
}

func TestFileConfigProvider_LoadFromFile(t *testing.T) {
	provider := NewFileConfigProvider("nonexistent.yaml")
	config := &Config{}

	err := provider.loadFromFile(config)
	assert.NoError(t, err)
}

func TestConfigFileLoading(t *testing.T) {
	// the package directory holds the sample file
	config, err := NewConfigWithProvider(NewFileConfigProvider("config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "weather-dashboard", config.App.Name)
	assert.Equal(t, "open-meteo", config.Weather.Provider)
	assert.Empty(t, config.Weather.BaseURL)
	assert.Empty(t, config.Geocoder.BaseURL)
	assert.Equal(t, 7, config.Dashboard.MapZoom)
}

func TestNewConfigWithProvider(t *testing.T) {
	mockProvider := &MockConfigProvider{config: Default()}
	mockProvider.config.App.Name = "test-app"

	config, err := NewConfigWithProvider(mockProvider)
	require.NoError(t, err)
	assert.Equal(t, "test-app", config.App.Name)

	failing := &MockConfigProvider{err: errors.New("load failed")}
	_, err = NewConfigWithProvider(failing)
	assert.EqualError(t, err, "load failed")
}

// MockConfigProvider for testing
type MockConfigProvider struct {
	config *Config
	err    error
}

func (m *MockConfigProvider) Load() (*Config, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.config, nil
}

func (m *MockConfigProvider) Validate(config *Config) error {
	return nil
}
