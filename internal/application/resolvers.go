package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/domain/station"
	"github.com/seoul-transit/service-route-search/internal/logger"
	"github.com/seoul-transit/service-route-search/internal/naver"
)

// StaticResolver resolves station codes through the static station table.
// It never performs a network call. This is the legacy ID-based lookup.
type StaticResolver struct {
	repo station.Repository
}

// NewStaticResolver creates a StaticResolver.
func NewStaticResolver(repo station.Repository) *StaticResolver {
	return &StaticResolver{repo: repo}
}

// Resolve returns the registered coordinate for the station code.
func (r *StaticResolver) Resolve(ctx context.Context, identifier string) (station.Coordinate, error) {
	s, err := r.repo.FindByID(ctx, identifier)
	if err != nil {
		return station.Coordinate{}, err
	}
	return s.Coordinate, nil
}

// Geocoder converts a place name into a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (station.Coordinate, error)
}

// GeocodingResolver resolves free-text station names through the geocoding provider.
// Failure causes are logged here and returned to the caller only as an opaque error.
type GeocodingResolver struct {
	geocoder Geocoder
	logger   *zap.Logger
}

// NewGeocodingResolver creates a GeocodingResolver.
func NewGeocodingResolver(geocoder Geocoder, logger *zap.Logger) *GeocodingResolver {
	return &GeocodingResolver{geocoder: geocoder, logger: logger}
}

// Resolve geocodes the name and returns the first candidate's coordinate.
func (r *GeocodingResolver) Resolve(ctx context.Context, identifier string) (station.Coordinate, error) {
	coord, err := r.geocoder.Geocode(ctx, identifier)
	if err == nil {
		return coord, nil
	}

	log := logger.With(ctx, r.logger)
	switch {
	case errors.Is(err, naver.ErrMissingCredentials):
		log.Warn("geocoding skipped: NAVER_CLIENT_ID / NAVER_CLIENT_SECRET are not set",
			zap.String("query", identifier),
		)
	case errors.Is(err, naver.ErrNoCandidates):
		log.Info("geocoding found no address",
			zap.String("query", identifier),
		)
	default:
		log.Warn("geocoding failed",
			zap.String("query", identifier),
			zap.Error(err),
		)
	}
	return station.Coordinate{}, fmt.Errorf("geocode %q: %w", identifier, err)
}
