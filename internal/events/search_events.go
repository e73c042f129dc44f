package events

import "time"

// Event types published on the search events topic.
const (
	SearchCompleted = "route.search.completed"
	SearchFailed    = "route.search.failed"
)

// SearchCompletedEvent is published after a route was found.
type SearchCompletedEvent struct {
	RequestID   string    `json:"request_id"`
	Mode        string    `json:"mode"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	StartCoord  string    `json:"start_coordinate"`
	EndCoord    string    `json:"end_coordinate"`
	RouteOption string    `json:"route_option"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// SearchFailedEvent is published after a search ended in the failed state.
type SearchFailedEvent struct {
	RequestID  string    `json:"request_id"`
	Mode       string    `json:"mode"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	ErrorKind  string    `json:"error_kind"`
	OccurredAt time.Time `json:"occurred_at"`
}
