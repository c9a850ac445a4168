package models

// HourlySeries is the hourly block of a forecast: a uniform time axis described by
// Start, End (exclusive) and Interval, all in UTC epoch seconds, and one array per metric.
// Samples the API reported as null are NaN.
type HourlySeries struct {
	Start    int64 `json:"start"`
	End      int64 `json:"end"`
	Interval int64 `json:"interval"`

	Temperature              []float64 `json:"temperature"`
	RelativeHumidity         []float64 `json:"relative_humidity"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	Precipitation            []float64 `json:"precipitation"`
	SurfacePressure          []float64 `json:"surface_pressure"`
	CloudCover               []float64 `json:"cloud_cover"`
}

// Len returns the number of timestamps the axis describes.
func (h HourlySeries) Len() int {
	if h.Interval <= 0 || h.End <= h.Start {
		return 0
	}
	n := (h.End - h.Start) / h.Interval
	if (h.End-h.Start)%h.Interval != 0 {
		n++
	}
	return int(n)
}
