package http

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"weather-dashboard/internal/forecast"
	"weather-dashboard/internal/services/dashboard"
)

//go:embed templates/dashboard.html
var pageSource string

var pageTemplate = template.Must(template.New("dashboard").Parse(pageSource))

const (
	clockLayout  = "03:04 PM"
	notAvailable = "n/a"
)

type pageView struct {
	City    string
	Metric  string
	Metrics []metricOption
	Error   string
	Result  *resultView
}

type metricOption struct {
	Key      string
	Title    string
	Selected bool
}

type resultView struct {
	Title      string
	Subtitle   string
	Current    currentCard
	Days       []dayCard
	DaysNotice string
	TrendTitle string
	Trend      []trendRow
	MapURL     template.URL
	MapLink    template.URL
	Details    []string
}

type currentCard struct {
	Temperature string
	FeelsLike   string
	Humidity    string
	CloudCover  string
	Time        string
}

type dayCard struct {
	Label  string
	Date   string
	Mean   string
	Max    string
	Min    string
	Precip string
}

type trendRow struct {
	Label string
	Value string
}

func (r *routes) handlePage(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		city = r.defaultCity
	}
	metric := c.Query("metric")

	view := pageView{City: city, Metric: metric}
	status := fiber.StatusOK

	d, err := r.service.Build(c.UserContext(), city, metric)
	if err != nil {
		status, view.Error = r.errorStatus(err, city, metric)
	} else {
		view.Metric = d.Trend.Metric.Key()
		view.Result = toResultView(d)
	}
	view.Metrics = metricOptions(view.Metric)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("render dashboard page: %w", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func metricOptions(selected string) []metricOption {
	current, err := forecast.ParseMetric(selected)
	if err != nil {
		current = forecast.Temperature
	}

	out := make([]metricOption, 0, len(forecast.Metrics()))
	for _, m := range forecast.Metrics() {
		out = append(out, metricOption{Key: m.Key(), Title: m.Title(), Selected: m == current})
	}
	return out
}

func toResultView(d *dashboard.Dashboard) *resultView {
	fc := d.Forecast
	cur := fc.Current

	observed := d.Now
	if cur.Time != nil {
		observed = cur.Time.In(d.Now.Location())
	}

	name := d.Location.Name
	if name == "" {
		name = d.Query
	}

	v := &resultView{
		Title:    "Weather in " + name,
		Subtitle: d.Location.DisplayName,
		Current: currentCard{
			Temperature: format(cur.Temperature, "%.0f°C"),
			FeelsLike:   format(cur.ApparentTemperature, "%.0f°C"),
			Humidity:    format(cur.RelativeHumidity, "%.0f%%"),
			CloudCover:  format(cur.CloudCover, "%.0f%%"),
			Time:        clockTime(observed, fc.TimezoneAbbreviation),
		},
		TrendTitle: fmt.Sprintf("%s (%s), next %d hours", d.Trend.Metric.Title(), d.Trend.Metric.Unit(), len(d.Trend.Points)),
		MapURL:     template.URL(mapEmbedURL(d.Map)),
		MapLink:    template.URL(mapLinkURL(d.Map)),
		Details: []string{
			fmt.Sprintf("Coordinates: %.4f°, %.4f°", d.Map.Latitude, d.Map.Longitude),
			"Elevation: " + format(d.Map.Elevation, "%.0f m"),
			"Precipitation: " + format(cur.Precipitation, "%.2f mm"),
			"Surface pressure: " + format(cur.SurfacePressure, "%.0f hPa"),
			"Wind: " + format(cur.WindSpeed, "%.1f km/h") + " from " + format(cur.WindDirection, "%.0f°"),
		},
	}

	var insufficient *forecast.InsufficientDataError
	switch {
	case errors.As(d.DaysErr, &insufficient):
		v.DaysNotice = fmt.Sprintf("Only %d of %d forecast days are available.", insufficient.Days, insufficient.Required)
	case d.DaysErr != nil:
		v.DaysNotice = "Daily summary is unavailable."
	}

	for _, day := range d.Days {
		v.Days = append(v.Days, dayCard{
			Label:  day.Label,
			Date:   day.Date.Format("Jan 2"),
			Mean:   format(day.MeanTemperature, "%.0f°C"),
			Max:    format(day.MaxTemperature, "%.0f°C"),
			Min:    format(day.MinTemperature, "%.0f°C"),
			Precip: format(day.MeanPrecipitationProbability, "%.0f%%"),
		})
	}

	unit := d.Trend.Metric.Unit()
	for _, p := range d.Trend.Points {
		v.Trend = append(v.Trend, trendRow{Label: p.Label, Value: format(p.Value, "%.1f "+unit)})
	}

	return v
}

func format(v float64, layout string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf(layout, v)
}

// clockTime renders t as "03:04 PM (PST)".
func clockTime(t time.Time, abbr string) string {
	if abbr == "" {
		abbr, _ = t.Zone()
	}
	return fmt.Sprintf("%s (%s)", t.Format(clockLayout), abbr)
}

// mapEmbedURL returns an OpenStreetMap embed centred on the marker. The bounding box
// approximates the slippy map extent at the configured zoom.
func mapEmbedURL(m dashboard.MapView) string {
	span := 180 / math.Pow(2, float64(m.Zoom))
	bbox := fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
		m.Longitude-span, m.Latitude-span/2, m.Longitude+span, m.Latitude+span/2)

	q := url.Values{}
	q.Set("bbox", bbox)
	q.Set("layer", "mapnik")
	q.Set("marker", fmt.Sprintf("%.4f,%.4f", m.Latitude, m.Longitude))
	return "https://www.openstreetmap.org/export/embed.html?" + q.Encode()
}

func mapLinkURL(m dashboard.MapView) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.4f&mlon=%.4f#map=%d/%.4f/%.4f",
		m.Latitude, m.Longitude, m.Zoom, m.Latitude, m.Longitude)
}
