package repositories

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"weather-dashboard/internal/models"
)

// RateLimitedGeocoder wraps a Geocoder with a token bucket limiter.
type RateLimitedGeocoder struct {
	geocoder Geocoder
	limiter  *rate.Limiter
}

// NewRateLimitedGeocoder allows rps requests per second (fractions allowed) with the given burst.
func NewRateLimitedGeocoder(geocoder Geocoder, rps float64, burst int) *RateLimitedGeocoder {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGeocoder{
		geocoder: geocoder,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedGeocoder) Name() string {
	return r.geocoder.Name()
}

func (r *RateLimitedGeocoder) Geocode(ctx context.Context, query string) (models.Location, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.Location{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.geocoder.Geocode(ctx, query)
}
