package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/domain/station"
)

// geocodeStatusOK is the status the geocoding API reports on success.
const geocodeStatusOK = "OK"

var (
	// ErrMissingCredentials is returned without any network call when the
	// API credentials are not configured.
	ErrMissingCredentials = errors.New("naver: API credentials are not configured")

	// ErrNoCandidates is returned when the geocoder answers OK with no addresses.
	ErrNoCandidates = errors.New("naver: geocode returned no addresses")

	// ErrMalformedResponse is returned when a response does not match the expected schema.
	ErrMalformedResponse = errors.New("naver: malformed response")
)

// geocodeResponse is the subset of the geocode v2 response this service reads.
type geocodeResponse struct {
	Status       string           `json:"status" validate:"required"`
	ErrorMessage string           `json:"errorMessage"`
	Addresses    []geocodeAddress `json:"addresses"`
}

type geocodeAddress struct {
	RoadAddress  string `json:"roadAddress"`
	JibunAddress string `json:"jibunAddress"`
	X            string `json:"x" validate:"required,longitude"`
	Y            string `json:"y" validate:"required,latitude"`
}

// Geocode converts a free-text place name into the coordinate of the first
// address candidate.
func (c *Client) Geocode(ctx context.Context, query string) (station.Coordinate, error) {
	if !c.HasCredentials() {
		return station.Coordinate{}, ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("query", query)

	status, body, err := c.get(ctx, c.geocodeURL, params)
	if err != nil {
		return station.Coordinate{}, fmt.Errorf("naver: geocode: %w", err)
	}
	if status != http.StatusOK {
		c.logger.Debug("geocode non-200 response",
			zap.Int("status", status),
			zap.String("body", truncate(body)),
		)
		return station.Coordinate{}, fmt.Errorf("naver: geocode: unexpected HTTP status %d", status)
	}

	resp, err := c.decodeGeocode(body)
	if err != nil {
		c.logger.Debug("geocode response rejected",
			zap.String("body", truncate(body)),
			zap.Error(err),
		)
		return station.Coordinate{}, err
	}

	if resp.Status != geocodeStatusOK {
		return station.Coordinate{}, fmt.Errorf("naver: geocode: status %q: %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Addresses) == 0 {
		return station.Coordinate{}, ErrNoCandidates
	}

	// Only the first candidate is used; later ones are never checked.
	first := resp.Addresses[0]
	if err := c.validate.Struct(first); err != nil {
		return station.Coordinate{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	coord, err := station.NewCoordinate(first.X, first.Y)
	if err != nil {
		return station.Coordinate{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return coord, nil
}

// decodeGeocode unmarshals a geocode body and checks the envelope fields.
func (c *Client) decodeGeocode(body []byte) (*geocodeResponse, error) {
	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}
