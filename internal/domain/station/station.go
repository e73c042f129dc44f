package station

import (
	"context"
	"errors"
	"strings"
)

// ErrStationNotFound is returned when a station ID is not in the table.
var ErrStationNotFound = errors.New("station not found")

// LookupMode selects how station identifiers are turned into coordinates.
type LookupMode string

const (
	// ModeID resolves opaque station codes through the static station table.
	ModeID LookupMode = "id"
	// ModeName resolves free-text station names through the geocoding provider.
	ModeName LookupMode = "name"
)

// IsValid returns true if the mode is recognized.
func (m LookupMode) IsValid() bool {
	return m == ModeID || m == ModeName
}

// Endpoint names one side of a route search.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointEnd   Endpoint = "end"
)

// Query is the pair of station identifiers supplied by the caller.
type Query struct {
	Start string     `json:"start"`
	End   string     `json:"end"`
	Mode  LookupMode `json:"mode"`
}

// NewQuery trims both identifiers and builds a Query.
func NewQuery(start, end string, mode LookupMode) Query {
	return Query{
		Start: strings.TrimSpace(start),
		End:   strings.TrimSpace(end),
		Mode:  mode,
	}
}

// Complete reports whether both identifiers are present.
func (q Query) Complete() bool {
	return q.Start != "" && q.End != ""
}

// Identifier returns the identifier for the given endpoint.
func (q Query) Identifier(e Endpoint) string {
	if e == EndpointEnd {
		return q.End
	}
	return q.Start
}

// Station is an entry in the static station table.
type Station struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// Repository is the read-only lookup contract for the static station table.
type Repository interface {
	// FindByID returns the station with the given code or ErrStationNotFound.
	FindByID(ctx context.Context, id string) (Station, error)

	// All returns every known station ordered by ID.
	All(ctx context.Context) ([]Station, error)
}

// Resolver turns a station identifier into a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (Coordinate, error)
}
