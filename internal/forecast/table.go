package forecast

import (
	"time"

	"weather-dashboard/internal/models"
)

// TimeSeriesPoint is one row of the hourly table.
type TimeSeriesPoint struct {
	Time                     time.Time
	Temperature              float64
	RelativeHumidity         float64
	ApparentTemperature      float64
	PrecipitationProbability float64
	Precipitation            float64
	SurfacePressure          float64
	CloudCover               float64
}

// HourlyTable is a chronologically ordered, uniformly sampled table in a single time zone.
type HourlyTable struct {
	Location *time.Location
	Points   []TimeSeriesPoint
}

func (t *HourlyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// BuildTable expands the series time axis from Start (inclusive) to End (exclusive) in steps of
// Interval, converts every timestamp to loc and zips the metric arrays onto it by position.
func BuildTable(series models.HourlySeries, loc *time.Location) (*HourlyTable, error) {
	if series.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if loc == nil {
		return nil, ErrNilLocation
	}

	n := series.Len()
	columns := [...]struct {
		metric Metric
		values []float64
	}{
		{Temperature, series.Temperature},
		{RelativeHumidity, series.RelativeHumidity},
		{ApparentTemperature, series.ApparentTemperature},
		{PrecipitationProbability, series.PrecipitationProbability},
		{Precipitation, series.Precipitation},
		{SurfacePressure, series.SurfacePressure},
		{CloudCover, series.CloudCover},
	}
	for _, c := range columns {
		if len(c.values) != n {
			return nil, &ShapeError{Metric: c.metric, Got: len(c.values), Want: n}
		}
	}

	points := make([]TimeSeriesPoint, n)
	for i := range points {
		ts := series.Start + int64(i)*series.Interval
		points[i] = TimeSeriesPoint{
			Time:                     time.Unix(ts, 0).In(loc),
			Temperature:              series.Temperature[i],
			RelativeHumidity:         series.RelativeHumidity[i],
			ApparentTemperature:      series.ApparentTemperature[i],
			PrecipitationProbability: series.PrecipitationProbability[i],
			Precipitation:            series.Precipitation[i],
			SurfacePressure:          series.SurfacePressure[i],
			CloudCover:               series.CloudCover[i],
		}
	}

	return &HourlyTable{Location: loc, Points: points}, nil
}
