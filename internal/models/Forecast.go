package models

import "fmt"

// Forecast is a single Open-Meteo response for one location, decoded by field name.
type Forecast struct {
	RepositoryName       string            `json:"repository_name" example:"open-meteo"`
	Latitude             float64           `json:"latitude" example:"6.125"`
	Longitude            float64           `json:"longitude" example:"125.125"`
	Elevation            float64           `json:"elevation" example:"18"`
	Timezone             string            `json:"timezone" example:"Asia/Manila"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation" example:"PST"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds" example:"28800"`
	Current              CurrentConditions `json:"current"`
	Hourly               HourlySeries      `json:"hourly"`
}

func (f *Forecast) RequestParams() string {
	return fmt.Sprintf("lat: %.4f lon: %.4f tz: %s", f.Latitude, f.Longitude, f.Timezone)
}
