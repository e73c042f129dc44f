package route

import (
	"errors"
	"fmt"

	"github.com/seoul-transit/service-route-search/internal/domain/station"
)

// ErrorKind classifies why a route search failed.
type ErrorKind string

const (
	KindInputValidation ErrorKind = "input_validation"
	KindResolution      ErrorKind = "resolution"
	KindProvider        ErrorKind = "provider"
	KindNoRouteFound    ErrorKind = "no_route_found"
	KindUnexpected      ErrorKind = "unexpected"
)

// Display messages shown to the end user.
const (
	MsgMissingStations = "please enter both a start and an end station"
	MsgNoRouteFound    = "no route found"
	MsgUnexpected      = "an unexpected error occurred while searching for a route"
)

// SearchError is the tagged failure outcome of a route search. Message is safe
// to show to the caller; Err carries diagnostic detail for logs only.
type SearchError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SearchError) Unwrap() error { return e.Err }

// NewValidationError reports missing or malformed identifiers.
func NewValidationError(message string) *SearchError {
	return &SearchError{Kind: KindInputValidation, Message: message}
}

// NewResolutionError reports that an endpoint could not be converted to coordinates.
func NewResolutionError(endpoint station.Endpoint, identifier string, cause error) *SearchError {
	return &SearchError{
		Kind:    KindResolution,
		Message: fmt.Sprintf("coordinates not found for %s station: %s", endpoint, identifier),
		Err:     cause,
	}
}

// NewConnectionError reports a transport failure talking to the directions provider.
func NewConnectionError(cause error) *SearchError {
	return &SearchError{
		Kind:    KindProvider,
		Message: fmt.Sprintf("failed to connect to the directions API: %v", cause),
		Err:     cause,
	}
}

// NewProviderError reports a non-success status from the directions provider.
// providerMessage is passed through verbatim.
func NewProviderError(code int, providerMessage string) *SearchError {
	return &SearchError{
		Kind:    KindProvider,
		Message: "directions API error: " + providerMessage,
		Err:     fmt.Errorf("provider code %d", code),
	}
}

// NewNoRouteFoundError reports a successful provider call with no candidates.
func NewNoRouteFoundError() *SearchError {
	return &SearchError{Kind: KindNoRouteFound, Message: MsgNoRouteFound}
}

// NewUnexpectedError wraps any other fault. The cause never reaches the caller.
func NewUnexpectedError(cause error) *SearchError {
	return &SearchError{Kind: KindUnexpected, Message: MsgUnexpected, Err: cause}
}

// KindOf returns the kind of err, or KindUnexpected when err is not a SearchError.
func KindOf(err error) ErrorKind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnexpected
}

// AsSearchError returns err as a SearchError, wrapping foreign errors as unexpected.
func AsSearchError(err error) *SearchError {
	var se *SearchError
	if errors.As(err, &se) {
		return se
	}
	return NewUnexpectedError(err)
}
