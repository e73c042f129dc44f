package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/domain/route"
	"github.com/seoul-transit/service-route-search/internal/domain/station"
)

// directionsCodeOK is the embedded status code the directions API reports on success.
const directionsCodeOK = 0

// directionsResponse is the subset of the directions response this service reads.
// Route stays raw until the embedded code reports success.
type directionsResponse struct {
	Code    *int            `json:"code" validate:"required"`
	Message string          `json:"message"`
	Route   json.RawMessage `json:"route"`
}

// Request asks the directions API for a route from start to goal and returns
// the first candidate of the configured option. Failures are *route.SearchError.
func (c *Client) Request(ctx context.Context, start, goal station.Coordinate) (*route.Result, error) {
	params := url.Values{}
	params.Set("start", start.String())
	params.Set("goal", goal.String())
	if c.routeOption != defaultRouteOption {
		params.Set("option", c.routeOption)
	}

	status, body, err := c.get(ctx, c.directionsURL, params)
	if err != nil {
		return nil, route.NewConnectionError(err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		c.logger.Warn("directions non-2xx response",
			zap.Int("status", status),
			zap.String("body", truncate(body)),
		)
		return nil, route.NewConnectionError(fmt.Errorf("unexpected HTTP status %d", status))
	}

	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.malformed(body, err)
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, c.malformed(body, err)
	}

	if *resp.Code != directionsCodeOK {
		c.logger.Info("directions provider reported an error",
			zap.Int("code", *resp.Code),
			zap.String("message", resp.Message),
		)
		return nil, route.NewProviderError(*resp.Code, resp.Message)
	}

	candidates, err := c.candidates(resp.Route)
	if err != nil {
		return nil, c.malformed(body, err)
	}
	if len(candidates) == 0 {
		return nil, route.NewNoRouteFoundError()
	}

	result, err := route.NewResult(c.routeOption, candidates[0])
	if err != nil {
		return nil, c.malformed(body, err)
	}
	return result, nil
}

// candidates decodes only the configured option's list from the route object.
// A missing or null route, or a missing option, yields no candidates.
func (c *Client) candidates(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var byOption map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byOption); err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	list, ok := byOption[c.routeOption]
	if !ok {
		return nil, nil
	}
	var candidates []json.RawMessage
	if err := json.Unmarshal(list, &candidates); err != nil {
		return nil, fmt.Errorf("route.%s: %w", c.routeOption, err)
	}
	return candidates, nil
}

func (c *Client) malformed(body []byte, err error) error {
	c.logger.Warn("directions response rejected",
		zap.String("body", truncate(body)),
		zap.Error(err),
	)
	return &route.SearchError{
		Kind:    route.KindProvider,
		Message: "directions API returned an unreadable response",
		Err:     fmt.Errorf("%w: %v", ErrMalformedResponse, err),
	}
}
