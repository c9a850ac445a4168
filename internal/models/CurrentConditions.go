package models

import "time"

// CurrentConditions holds the eight current-weather variables requested from the forecast API.
type CurrentConditions struct {
	Time                *time.Time `json:"time"`
	Temperature         float64    `json:"temperature" example:"29.4"`
	RelativeHumidity    float64    `json:"relative_humidity" example:"74"`
	ApparentTemperature float64    `json:"apparent_temperature" example:"33.1"`
	Precipitation       float64    `json:"precipitation" example:"0.2"`
	CloudCover          float64    `json:"cloud_cover" example:"63"`
	SurfacePressure     float64    `json:"surface_pressure" example:"1008"`
	WindSpeed           float64    `json:"wind_speed" example:"9.7"`
	WindDirection       float64    `json:"wind_direction" example:"212"`
}
