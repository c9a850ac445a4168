package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"weather-dashboard/internal/forecast"
	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
)

const defaultMapZoom = 7

var (
	ErrEmptyCity     = errors.New("city is required")
	ErrUnknownMetric = errors.New("unknown metric")
)

// MapView locates the map marker.
type MapView struct {
	Latitude  float64
	Longitude float64
	Elevation float64
	Zoom      int
}

// Dashboard is everything one page render shows.
type Dashboard struct {
	Query    string
	Location models.Location
	Forecast models.Forecast
	// Now is the render time in the forecast time zone.
	Now time.Time
	// Days holds the summary strip. When the forecast is too short it is empty and DaysErr is set;
	// the other widgets are still filled.
	Days    []forecast.DaySummary
	DaysErr error
	Trend   forecast.TrendWindow
	Map     MapView
}

type Service struct {
	geocoder   repositories.Geocoder
	forecasts  repositories.ForecastRepository
	l          *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	trendHours int
	mapZoom    int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTrendHours(hours int) Option {
	return func(s *Service) {
		if hours > 0 {
			s.trendHours = hours
		}
	}
}

func WithMapZoom(zoom int) Option {
	return func(s *Service) {
		if zoom > 0 {
			s.mapZoom = zoom
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewDashboardService(
	geocoder repositories.Geocoder,
	forecasts repositories.ForecastRepository,
	l *logger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		geocoder:   geocoder,
		forecasts:  forecasts,
		l:          l,
		now:        time.Now,
		trendHours: forecast.DefaultTrendLimit,
		mapZoom:    defaultMapZoom,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build geocodes city, fetches its forecast and derives every widget of the page.
// metricKey selects the trend metric; empty means temperature.
func (s *Service) Build(ctx context.Context, city, metricKey string) (*Dashboard, error) {
	metric := forecast.Temperature
	if strings.TrimSpace(metricKey) != "" {
		m, err := forecast.ParseMetric(metricKey)
		if err != nil {
			return nil, errors.Wrapf(ErrUnknownMetric, "%q", metricKey)
		}
		metric = m
	}

	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}

	s.l.Info("building dashboard", map[string]any{
		"city":   city,
		"metric": metric.Key(),
	})

	location, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			s.metrics.ObserveBuild("city_not_found")
			s.l.Warning("city not found", map[string]any{"city": city, "geocoder": s.geocoder.Name()})
		} else {
			s.metrics.ObserveBuild("geocode_error")
		}
		return nil, errors.Wrapf(err, "geocode %q", city)
	}

	fc, err := s.forecasts.FetchForecast(ctx, location.Latitude, location.Longitude)
	if err != nil {
		s.metrics.ObserveBuild("forecast_error")
		return nil, errors.Wrapf(err, "fetch forecast for %s", location)
	}

	zone := resolveZone(fc)
	table, err := forecast.BuildTable(fc.Hourly, zone)
	if err != nil {
		s.metrics.ObserveBuild("shape_error")
		s.l.Error(err, map[string]any{"city": city, "params": fc.RequestParams()})
		return nil, errors.Wrap(err, "build hourly table")
	}

	now := s.now().In(zone)
	d := &Dashboard{
		Query:    city,
		Location: location,
		Forecast: fc,
		Now:      now,
		Trend:    forecast.BuildTrendWindow(table, now, metric, s.trendHours),
		Map: MapView{
			Latitude:  fc.Latitude,
			Longitude: fc.Longitude,
			Elevation: fc.Elevation,
			Zoom:      s.mapZoom,
		},
	}

	days, err := forecast.AggregateByDay(table)
	if err != nil {
		d.DaysErr = err
		s.metrics.ObserveBuild("partial")
		s.l.Warning("day summary unavailable", map[string]any{"city": city, "err": err.Error()})
	} else {
		d.Days = forecast.LabelDays(days)
		s.metrics.ObserveBuild("ok")
	}

	s.l.Info("dashboard built", map[string]any{
		"city":     city,
		"timezone": zone.String(),
		"hours":    table.Len(),
		"trend":    len(d.Trend.Points),
		"days":     len(d.Days),
	})

	return d, nil
}

// resolveZone prefers the IANA zone; without tzdata for it, the reported fixed offset is used.
func resolveZone(fc models.Forecast) *time.Location {
	if fc.Timezone != "" {
		if loc, err := time.LoadLocation(fc.Timezone); err == nil {
			return loc
		}
	}
	name := fc.TimezoneAbbreviation
	if name == "" {
		name = fc.Timezone
	}
	return time.FixedZone(name, fc.UTCOffsetSeconds)
}
