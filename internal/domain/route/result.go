package route

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/seoul-transit/service-route-search/internal/domain/station"
)

// Result is the first candidate itinerary returned by the directions provider.
// Raw is the provider's JSON object, passed through unmodified.
type Result struct {
	Option string          `json:"option"`
	Raw    json.RawMessage `json:"route"`
}

// NewResult builds a Result from a provider candidate. raw must be a JSON object.
func NewResult(option string, raw json.RawMessage) (*Result, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.New("route candidate is not a JSON object")
	}
	return &Result{Option: option, Raw: raw}, nil
}

// Summary holds the well-known headline figures of a route, when the provider sent them.
type Summary struct {
	DistanceMeters int64
	Duration       time.Duration
	Present        bool
}

// Summary reads summary.distance (metres) and summary.duration (milliseconds).
// Missing or oddly typed fields leave Present false rather than failing.
func (r *Result) Summary() Summary {
	var probe struct {
		Summary *struct {
			Distance *int64 `json:"distance"`
			Duration *int64 `json:"duration"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(r.Raw, &probe); err != nil || probe.Summary == nil {
		return Summary{}
	}
	if probe.Summary.Distance == nil || probe.Summary.Duration == nil {
		return Summary{}
	}
	return Summary{
		DistanceMeters: *probe.Summary.Distance,
		Duration:       time.Duration(*probe.Summary.Duration) * time.Millisecond,
		Present:        true,
	}
}

// Requester asks the directions provider for a route between two coordinates.
// Failures are returned as *SearchError with KindProvider or KindNoRouteFound.
type Requester interface {
	Request(ctx context.Context, start, goal station.Coordinate) (*Result, error)
}
