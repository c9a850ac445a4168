package repositories

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

const OpenMeteoGeocodingBaseURL = "https://geocoding-api.open-meteo.com"

type OpenMeteoGeocoder struct {
	baseURL    string
	language   string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewOpenMeteoGeocoder(baseURL, language string, l *logger.Logger, httpClient HTTPClient) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = OpenMeteoGeocodingBaseURL
	}
	if language == "" {
		language = "en"
	}
	return &OpenMeteoGeocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: httpClient,
		l:          l,
	}
}

func (o *OpenMeteoGeocoder) Name() string {
	return "open-meteo-geocoding"
}

type openMeteoGeocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
	} `json:"results"`
}

func (o *OpenMeteoGeocoder) Geocode(ctx context.Context, query string) (models.Location, error) {
	q := url.Values{}
	q.Set("name", query)
	q.Set("count", "1")
	q.Set("language", o.language)
	q.Set("format", "json")

	o.l.Info("making openmeteo geocoding request", map[string]any{"query": query})

	var response openMeteoGeocodingResponse
	if err := getJSON(ctx, o.httpClient, o.l, o.Name(), o.baseURL+"/v1/search?"+q.Encode(), &response); err != nil {
		return models.Location{}, err
	}
	if len(response.Results) == 0 {
		return models.Location{}, fmt.Errorf("%w: %q", ErrLocationNotFound, query)
	}

	r := response.Results[0]
	parts := []string{r.Name}
	for _, p := range []string{r.Admin1, r.Country} {
		if p != "" && p != r.Name {
			parts = append(parts, p)
		}
	}

	return models.Location{
		Name:        r.Name,
		DisplayName: strings.Join(parts, ", "),
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}, nil
}
