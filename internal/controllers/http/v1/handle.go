package http

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"weather-dashboard/internal/forecast"
	"weather-dashboard/internal/repositories"
	"weather-dashboard/internal/services/dashboard"
)

const dateLayout = "2006-01-02"

// DashboardResponse is the JSON form of one dashboard render.
// Missing upstream values are encoded as null.
type DashboardResponse struct {
	Query                string           `json:"query" example:"General Santos"`
	Location             LocationResponse `json:"location"`
	Timezone             string           `json:"timezone" example:"Asia/Manila"`
	TimezoneAbbreviation string           `json:"timezone_abbreviation" example:"PST"`
	LocalTime            string           `json:"local_time" example:"2024-01-01T15:30:00+08:00"`
	Current              CurrentResponse  `json:"current"`
	Days                 []DayResponse    `json:"days"`
	DaysError            string           `json:"days_error,omitempty" example:"forecast covers 2 calendar days, 5 required"`
	Trend                TrendResponse    `json:"trend"`
	Map                  MapResponse      `json:"map"`
}

type LocationResponse struct {
	Name        string  `json:"name" example:"General Santos"`
	DisplayName string  `json:"display_name" example:"General Santos, Soccsksargen, Philippines"`
	Latitude    float64 `json:"latitude" example:"6.1164"`
	Longitude   float64 `json:"longitude" example:"125.1716"`
}

type CurrentResponse struct {
	Time                *string  `json:"time" example:"2024-01-01T15:30:00+08:00"`
	Temperature         *float64 `json:"temperature" example:"29.4"`
	RelativeHumidity    *float64 `json:"relative_humidity" example:"74"`
	ApparentTemperature *float64 `json:"apparent_temperature" example:"33.1"`
	Precipitation       *float64 `json:"precipitation" example:"0.2"`
	CloudCover          *float64 `json:"cloud_cover" example:"63"`
	SurfacePressure     *float64 `json:"surface_pressure" example:"1008"`
	WindSpeed           *float64 `json:"wind_speed" example:"9.7"`
	WindDirection       *float64 `json:"wind_direction" example:"212"`
}

type DayResponse struct {
	Label                        string   `json:"label" example:"Today"`
	Date                         string   `json:"date" example:"2024-01-01"`
	MeanTemperature              *float64 `json:"mean_temperature" example:"27.8"`
	MaxTemperature               *float64 `json:"max_temperature" example:"31.2"`
	MinTemperature               *float64 `json:"min_temperature" example:"24.9"`
	MeanPrecipitationProbability *float64 `json:"mean_precipitation_probability" example:"35"`
}

type TrendResponse struct {
	Metric MetricResponse       `json:"metric"`
	Points []TrendPointResponse `json:"points"`
}

type TrendPointResponse struct {
	Label string   `json:"label" example:"04PM"`
	Time  string   `json:"time" example:"2024-01-01T16:00:00+08:00"`
	Value *float64 `json:"value" example:"30.1"`
}

type MetricResponse struct {
	Key   string `json:"key" example:"temperature"`
	Title string `json:"title" example:"Temperature"`
	Unit  string `json:"unit" example:"°C"`
}

type MapResponse struct {
	Latitude  float64  `json:"latitude" example:"6.125"`
	Longitude float64  `json:"longitude" example:"125.125"`
	Elevation *float64 `json:"elevation" example:"18"`
	Zoom      int      `json:"zoom" example:"7"`
	EmbedURL  string   `json:"embed_url"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"city not found"`
}

// GetDashboard godoc
// @Summary Get dashboard data
// @Description Geocodes a city, fetches its forecast and returns current conditions, a 5 day summary and an hourly trend window
// @Tags Dashboard
// @Produce json
// @Param city query string true "City name" example(General Santos)
// @Param metric query string false "Trend metric key or title (default: temperature)" example(cloud_cover)
// @Success 200 {object} DashboardResponse "Successful response"
// @Failure 400 {object} ErrorResponse "Missing city or unknown metric"
// @Failure 404 {object} ErrorResponse "City not found"
// @Failure 500 {object} ErrorResponse "Malformed forecast data"
// @Failure 502 {object} ErrorResponse "Upstream API failure"
// @Router /api/v1/dashboard [get]
func (r *routes) handleDashboard(c *fiber.Ctx) error {
	city := c.Query("city")
	metric := c.Query("metric")

	if city == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: city",
		})
	}

	d, err := r.service.Build(c.UserContext(), city, metric)
	if err != nil {
		status, msg := r.errorStatus(err, city, metric)
		return c.Status(status).JSON(ErrorResponse{Error: msg})
	}

	return c.JSON(toDashboardResponse(d))
}

// ListMetrics godoc
// @Summary List trend metrics
// @Description Returns the hourly metrics selectable for the trend window
// @Tags Dashboard
// @Produce json
// @Success 200 {array} MetricResponse
// @Router /api/v1/metrics [get]
func (r *routes) handleMetrics(c *fiber.Ctx) error {
	out := make([]MetricResponse, 0, len(forecast.Metrics()))
	for _, m := range forecast.Metrics() {
		out = append(out, toMetricResponse(m))
	}
	return c.JSON(out)
}

// errorStatus maps a build failure to a status code and a message safe to show to users.
func (r *routes) errorStatus(err error, city, metric string) (int, string) {
	var (
		shapeErr  *forecast.ShapeError
		statusErr *repositories.StatusError
	)

	switch {
	case errors.Is(err, dashboard.ErrEmptyCity):
		return fiber.StatusBadRequest, "Missing required parameter: city"
	case errors.Is(err, dashboard.ErrUnknownMetric):
		return fiber.StatusBadRequest, "Unknown metric: " + metric
	case errors.Is(err, repositories.ErrLocationNotFound):
		return fiber.StatusNotFound, "City not found: " + city
	case errors.As(err, &shapeErr):
		r.l.Error(err, map[string]any{"city": city})
		return fiber.StatusInternalServerError, "Forecast data is malformed"
	case errors.As(err, &statusErr):
		r.l.Error(err, map[string]any{"city": city, "repository": statusErr.Repository})
		return fiber.StatusBadGateway, "Weather service is unavailable"
	default:
		r.l.Error(err, map[string]any{"city": city})
		return fiber.StatusBadGateway, "Failed to fetch weather data"
	}
}

func toDashboardResponse(d *dashboard.Dashboard) DashboardResponse {
	zone := d.Now.Location()
	fc := d.Forecast

	resp := DashboardResponse{
		Query: d.Query,
		Location: LocationResponse{
			Name:        d.Location.Name,
			DisplayName: d.Location.DisplayName,
			Latitude:    d.Location.Latitude,
			Longitude:   d.Location.Longitude,
		},
		Timezone:             fc.Timezone,
		TimezoneAbbreviation: fc.TimezoneAbbreviation,
		LocalTime:            d.Now.Format(time.RFC3339),
		Current: CurrentResponse{
			Temperature:         num(fc.Current.Temperature),
			RelativeHumidity:    num(fc.Current.RelativeHumidity),
			ApparentTemperature: num(fc.Current.ApparentTemperature),
			Precipitation:       num(fc.Current.Precipitation),
			CloudCover:          num(fc.Current.CloudCover),
			SurfacePressure:     num(fc.Current.SurfacePressure),
			WindSpeed:           num(fc.Current.WindSpeed),
			WindDirection:       num(fc.Current.WindDirection),
		},
		Days: make([]DayResponse, 0, len(d.Days)),
		Trend: TrendResponse{
			Metric: toMetricResponse(d.Trend.Metric),
			Points: make([]TrendPointResponse, 0, len(d.Trend.Points)),
		},
		Map: MapResponse{
			Latitude:  d.Map.Latitude,
			Longitude: d.Map.Longitude,
			Elevation: num(d.Map.Elevation),
			Zoom:      d.Map.Zoom,
			EmbedURL:  mapEmbedURL(d.Map),
		},
	}

	if fc.Current.Time != nil {
		ts := fc.Current.Time.In(zone).Format(time.RFC3339)
		resp.Current.Time = &ts
	}
	if d.DaysErr != nil {
		resp.DaysError = d.DaysErr.Error()
	}

	for _, day := range d.Days {
		resp.Days = append(resp.Days, DayResponse{
			Label:                        day.Label,
			Date:                         day.Date.Format(dateLayout),
			MeanTemperature:              num(day.MeanTemperature),
			MaxTemperature:               num(day.MaxTemperature),
			MinTemperature:               num(day.MinTemperature),
			MeanPrecipitationProbability: num(day.MeanPrecipitationProbability),
		})
	}

	for _, p := range d.Trend.Points {
		resp.Trend.Points = append(resp.Trend.Points, TrendPointResponse{
			Label: p.Label,
			Time:  p.Time.Format(time.RFC3339),
			Value: num(p.Value),
		})
	}

	return resp
}

func toMetricResponse(m forecast.Metric) MetricResponse {
	return MetricResponse{Key: m.Key(), Title: m.Title(), Unit: m.Unit()}
}

// num drops values JSON cannot carry.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
