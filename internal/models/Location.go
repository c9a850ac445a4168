package models

import "fmt"

type Location struct {
	Name        string  `json:"name" example:"General Santos"`
	DisplayName string  `json:"display_name" example:"General Santos, South Cotabato, Soccsksargen, Philippines"`
	Latitude    float64 `json:"latitude" example:"6.1164"`
	Longitude   float64 `json:"longitude" example:"125.1716"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f)", l.Name, l.Latitude, l.Longitude)
}
