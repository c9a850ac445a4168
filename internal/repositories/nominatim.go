package repositories

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves place names with OpenStreetMap Nominatim.
// Its usage policy allows one request per second; wrap it in a RateLimitedGeocoder.
type NominatimGeocoder struct {
	baseURL    string
	language   string
	httpClient HTTPClient
	l          *logger.Logger
}

func NewNominatimGeocoder(baseURL, language string, l *logger.Logger, httpClient HTTPClient) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: httpClient,
		l:          l,
	}
}

func (n *NominatimGeocoder) Name() string {
	return "nominatim"
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, query string) (models.Location, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if n.language != "" {
		q.Set("accept-language", n.language)
	}

	n.l.Info("making nominatim API request", map[string]any{"query": query})

	var places []nominatimPlace
	if err := getJSON(ctx, n.httpClient, n.l, n.Name(), n.baseURL+"/search?"+q.Encode(), &places); err != nil {
		return models.Location{}, err
	}
	if len(places) == 0 {
		return models.Location{}, fmt.Errorf("%w: %q", ErrLocationNotFound, query)
	}

	p := places[0]
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid latitude %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid longitude %q: %w", p.Lon, err)
	}

	name := p.Name
	if name == "" {
		name, _, _ = strings.Cut(p.DisplayName, ",")
	}

	return models.Location{
		Name:        strings.TrimSpace(name),
		DisplayName: p.DisplayName,
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}
