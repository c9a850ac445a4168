package forecast

import (
	"fmt"
	"strings"
)

// Metric identifies one of the seven hourly forecast variables.
type Metric int

const (
	Temperature Metric = iota
	RelativeHumidity
	ApparentTemperature
	PrecipitationProbability
	Precipitation
	SurfacePressure
	CloudCover
)

type metricInfo struct {
	key   string
	title string
	unit  string
}

var metricInfos = [...]metricInfo{
	Temperature:              {key: "temperature", title: "Temperature", unit: "°C"},
	RelativeHumidity:         {key: "relative_humidity", title: "Relative Humidity", unit: "%"},
	ApparentTemperature:      {key: "apparent_temperature", title: "Apparent Temperature", unit: "°C"},
	PrecipitationProbability: {key: "precipitation_probability", title: "Precipitation Probability", unit: "%"},
	Precipitation:            {key: "precipitation", title: "Precipitation", unit: "mm"},
	SurfacePressure:          {key: "surface_pressure", title: "Surface Pressure", unit: "hPa"},
	CloudCover:               {key: "cloud_cover", title: "Cloud Cover", unit: "%"},
}

// Metrics lists every hourly metric in request order.
func Metrics() []Metric {
	out := make([]Metric, len(metricInfos))
	for i := range metricInfos {
		out[i] = Metric(i)
	}
	return out
}

func (m Metric) valid() bool {
	return m >= 0 && int(m) < len(metricInfos)
}

// Key is the machine name used in query strings and JSON.
func (m Metric) Key() string {
	if !m.valid() {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return metricInfos[m].key
}

// Title is the human readable name.
func (m Metric) Title() string {
	if !m.valid() {
		return m.Key()
	}
	return metricInfos[m].title
}

func (m Metric) Unit() string {
	if !m.valid() {
		return ""
	}
	return metricInfos[m].unit
}

func (m Metric) String() string {
	return m.Key()
}

// ParseMetric accepts either the key ("cloud_cover") or the title ("Cloud Cover"), case-insensitively.
func ParseMetric(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	for i, info := range metricInfos {
		if strings.EqualFold(s, info.key) || strings.EqualFold(s, info.title) {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Value returns the metric's sample from p.
func (m Metric) Value(p TimeSeriesPoint) float64 {
	switch m {
	case Temperature:
		return p.Temperature
	case RelativeHumidity:
		return p.RelativeHumidity
	case ApparentTemperature:
		return p.ApparentTemperature
	case PrecipitationProbability:
		return p.PrecipitationProbability
	case Precipitation:
		return p.Precipitation
	case SurfacePressure:
		return p.SurfacePressure
	case CloudCover:
		return p.CloudCover
	}
	return 0
}
