package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config/config.yaml"
	DefaultEnvFile    = ".env"
)

type Config struct {
	App        AppConfig        `yaml:"app" envconfig:"APP"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Log        LogConfig        `yaml:"log" envconfig:"LOG"`
	Sentry     SentryConfig     `yaml:"sentry" envconfig:"SENTRY"`
	Geocoder   GeocoderConfig   `yaml:"geocoder" envconfig:"GEOCODER"`
	Weather    WeatherConfig    `yaml:"weather" envconfig:"WEATHER"`
	HTTPClient HTTPClientConfig `yaml:"http_client" envconfig:"HTTP_CLIENT"`
	Dashboard  DashboardConfig  `yaml:"dashboard" envconfig:"DASHBOARD"`
}

type AppConfig struct {
	Name    string `yaml:"name" split_words:"true"`
	Version string `yaml:"version" split_words:"true"`
	Env     string `yaml:"env" split_words:"true"`
}

type ServerConfig struct {
	Port         string        `yaml:"port" split_words:"true"`
	ReadTimeout  time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level" split_words:"true"`
}

type SentryConfig struct {
	DSN   string `yaml:"dsn" split_words:"true"`
	Debug bool   `yaml:"debug" split_words:"true"`
}

// GeocoderConfig selects the place-name lookup provider ("nominatim" or "open-meteo").
// An empty BaseURL means the provider's public endpoint.
type GeocoderConfig struct {
	Provider  string  `yaml:"provider" split_words:"true"`
	BaseURL   string  `yaml:"base_url" split_words:"true"`
	Language  string  `yaml:"language" split_words:"true"`
	RateLimit float64 `yaml:"rate_limit" split_words:"true"`
	Burst     int     `yaml:"burst" split_words:"true"`
}

// WeatherConfig selects the forecast provider ("open-meteo" or "openweathermap").
// An empty BaseURL means the provider's public endpoint. APIKey is only used by openweathermap.
type WeatherConfig struct {
	Provider     string `yaml:"provider" split_words:"true"`
	BaseURL      string `yaml:"base_url" split_words:"true"`
	APIKey       string `yaml:"api_key" split_words:"true"`
	ForecastDays int    `yaml:"forecast_days" split_words:"true"`
}

type HTTPClientConfig struct {
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
	RetryCount   int           `yaml:"retry_count" split_words:"true"`
	RetryWait    time.Duration `yaml:"retry_wait" split_words:"true"`
	RetryMaxWait time.Duration `yaml:"retry_max_wait" split_words:"true"`
	UserAgent    string        `yaml:"user_agent" split_words:"true"`
	CacheTTL     time.Duration `yaml:"cache_ttl" split_words:"true"`
	// CachePath is the on-disk cache directory; empty keeps the cache in memory.
	CachePath string `yaml:"cache_path" split_words:"true"`
}

type DashboardConfig struct {
	DefaultCity string `yaml:"default_city" split_words:"true"`
	TrendHours  int    `yaml:"trend_hours" split_words:"true"`
	MapZoom     int    `yaml:"map_zoom" split_words:"true"`
}

// ConfigProvider loads and validates configuration.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider reads defaults, then the YAML file, then environment variables
// (optionally seeded from a .env file). Later sources win.
type FileConfigProvider struct {
	path    string
	envFile string
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	return &FileConfigProvider{path: path}
}

// WithEnvFile makes Load read KEY=VALUE pairs from file into the environment first.
// Variables already set in the environment are kept.
func (p *FileConfigProvider) WithEnvFile(file string) *FileConfigProvider {
	p.envFile = file
	return p
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "weather-dashboard",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Geocoder: GeocoderConfig{
			Provider:  "nominatim",
			Language:  "en",
			RateLimit: 1,
			Burst:     1,
		},
		Weather: WeatherConfig{
			Provider:     "open-meteo",
			ForecastDays: 7,
		},
		HTTPClient: HTTPClientConfig{
			Timeout:      15 * time.Second,
			RetryCount:   5,
			RetryWait:    200 * time.Millisecond,
			RetryMaxWait: 5 * time.Second,
			UserAgent:    "weather-dashboard/1.0",
			CacheTTL:     time.Hour,
			CachePath:    ".cache",
		},
		Dashboard: DashboardConfig{
			DefaultCity: "General Santos",
			TrendHours:  24,
			MapZoom:     7,
		},
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	cnf := Default()

	if err := p.loadFromFile(cnf); err != nil {
		return nil, err
	}

	if p.envFile != "" {
		if err := godotenv.Load(p.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file %s: %w", p.envFile, err)
		}
	}

	if err := envconfig.Process("", cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return cnf, nil
}

func (p *FileConfigProvider) loadFromFile(config *Config) error {
	yamlData, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", p.path, err)
	}

	if err := yaml.Unmarshal(yamlData, config); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", p.path, err)
	}
	return nil
}

func (p *FileConfigProvider) Validate(config *Config) error {
	var problems []string

	if strings.TrimSpace(config.App.Name) == "" {
		problems = append(problems, "app.name is required")
	}
	if strings.TrimSpace(config.Server.Port) == "" {
		problems = append(problems, "server.port is required")
	}
	switch config.Geocoder.Provider {
	case "nominatim", "open-meteo":
	default:
		problems = append(problems, fmt.Sprintf("geocoder.provider %q is not supported", config.Geocoder.Provider))
	}
	if config.Geocoder.RateLimit <= 0 {
		problems = append(problems, "geocoder.rate_limit must be positive")
	}
	switch config.Weather.Provider {
	case "open-meteo":
	case "openweathermap":
		if strings.TrimSpace(config.Weather.APIKey) == "" {
			problems = append(problems, "weather.api_key is required for openweathermap")
		}
	default:
		problems = append(problems, fmt.Sprintf("weather.provider %q is not supported", config.Weather.Provider))
	}
	if config.Weather.ForecastDays < 5 || config.Weather.ForecastDays > 16 {
		problems = append(problems, "weather.forecast_days must be between 5 and 16")
	}
	if config.HTTPClient.RetryCount < 0 {
		problems = append(problems, "http_client.retry_count must not be negative")
	}
	if config.HTTPClient.CacheTTL <= 0 {
		problems = append(problems, "http_client.cache_ttl must be positive")
	}
	if config.Dashboard.TrendHours <= 0 {
		problems = append(problems, "dashboard.trend_hours must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func NewConfig() (*Config, error) {
	return NewConfigWithProvider(NewFileConfigProvider(DefaultConfigFile).WithEnvFile(DefaultEnvFile))
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	cnf, err := provider.Load()
	if err != nil {
		return nil, err
	}
	if err := provider.Validate(cnf); err != nil {
		return nil, err
	}
	return cnf, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production" || c.App.Env == "prod"
}

// SentryEnabled reports whether errors should be forwarded to Sentry.
func (c *Config) SentryEnabled() bool {
	return c.Sentry.DSN != ""
}
