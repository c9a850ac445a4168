package forecast_test

import (
	"time"

	"weather-dashboard/internal/models"
)

func fill(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func constantSeries(start time.Time, hours int, v float64) models.HourlySeries {
	c := func(int) float64 { return v }
	return models.HourlySeries{
		Start:                    start.Unix(),
		End:                      start.Add(time.Duration(hours) * time.Hour).Unix(),
		Interval:                 3600,
		Temperature:              fill(hours, c),
		RelativeHumidity:         fill(hours, c),
		ApparentTemperature:      fill(hours, c),
		PrecipitationProbability: fill(hours, c),
		Precipitation:            fill(hours, c),
		SurfacePressure:          fill(hours, c),
		CloudCover:               fill(hours, c),
	}
}
