package route

// SearchStatus represents the current state of a route search in its lifecycle.
type SearchStatus string

const (
	StatusReceived        SearchStatus = "received"
	StatusValidating      SearchStatus = "validating"
	StatusResolvingStart  SearchStatus = "resolving_start"
	StatusResolvingEnd    SearchStatus = "resolving_end"
	StatusRequestingRoute SearchStatus = "requesting_route"
	StatusRendering       SearchStatus = "rendering"
	StatusFailed          SearchStatus = "failed"
)

// validTransitions defines the state machine for route search status transitions.
var validTransitions = map[SearchStatus][]SearchStatus{
	StatusReceived:        {StatusValidating, StatusFailed},
	StatusValidating:      {StatusResolvingStart, StatusFailed},
	StatusResolvingStart:  {StatusResolvingEnd, StatusFailed},
	StatusResolvingEnd:    {StatusRequestingRoute, StatusFailed},
	StatusRequestingRoute: {StatusRendering, StatusFailed},
	StatusRendering:       {},
	StatusFailed:          {},
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s SearchStatus) CanTransitionTo(target SearchStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s SearchStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s SearchStatus) String() string {
	return string(s)
}
