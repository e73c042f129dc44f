package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/domain/route"
	"github.com/seoul-transit/service-route-search/internal/domain/station"
	"github.com/seoul-transit/service-route-search/internal/events"
	"github.com/seoul-transit/service-route-search/internal/logger"
)

const (
	eventSource    = "service-route-search"
	publishTimeout = 3 * time.Second
)

// resolutionSteps is the order endpoints are resolved in, start first.
var resolutionSteps = []struct {
	status   route.SearchStatus
	endpoint station.Endpoint
}{
	{route.StatusResolvingStart, station.EndpointStart},
	{route.StatusResolvingEnd, station.EndpointEnd},
}

// SearchResult is what the presentation layer renders for a successful search.
type SearchResult struct {
	Query     station.Query
	Start     station.Coordinate
	End       station.Coordinate
	Route     *route.Result
	RequestID string
}

// RouteSearchService orchestrates a single route search: validate, resolve the
// start, resolve the end, request the route. Any failure is terminal.
type RouteSearchService struct {
	resolvers map[station.LookupMode]station.Resolver
	requester route.Requester
	publisher events.Publisher
	topic     string
	logger    *zap.Logger
}

// NewRouteSearchService creates a new RouteSearchService.
func NewRouteSearchService(
	staticResolver station.Resolver,
	geocodingResolver station.Resolver,
	requester route.Requester,
	publisher events.Publisher,
	topic string,
	logger *zap.Logger,
) *RouteSearchService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RouteSearchService{
		resolvers: map[station.LookupMode]station.Resolver{
			station.ModeID:   staticResolver,
			station.ModeName: geocodingResolver,
		},
		requester: requester,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Search runs the search for q. On failure the returned error is always a
// *route.SearchError whose Message is safe to show to the caller.
func (s *RouteSearchService) Search(ctx context.Context, q station.Query) (result *SearchResult, err error) {
	run := newSearchRun(ctx, q, logger.With(ctx, s.logger))

	defer func() {
		if p := recover(); p != nil {
			run.log.Error("route search panicked",
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			result, err = nil, route.NewUnexpectedError(fmt.Errorf("panic: %v", p))
		}

		if err != nil {
			se := route.AsSearchError(err)
			run.fail(se)
			s.publishFailed(ctx, run, se)
			result, err = nil, se
			return
		}
		s.publishCompleted(ctx, run, result)
	}()

	return s.search(ctx, run)
}

func (s *RouteSearchService) search(ctx context.Context, run *searchRun) (*SearchResult, error) {
	q := run.query

	if err := run.advance(route.StatusValidating); err != nil {
		return nil, err
	}
	if !q.Complete() {
		return nil, route.NewValidationError(route.MsgMissingStations)
	}
	if !q.Mode.IsValid() {
		return nil, route.NewValidationError(fmt.Sprintf("unsupported station lookup mode %q", q.Mode))
	}
	resolver := s.resolvers[q.Mode]
	if resolver == nil {
		return nil, route.NewUnexpectedError(fmt.Errorf("no resolver configured for mode %q", q.Mode))
	}

	coords := make(map[station.Endpoint]station.Coordinate, len(resolutionSteps))
	for _, step := range resolutionSteps {
		if err := run.advance(step.status); err != nil {
			return nil, err
		}
		identifier := q.Identifier(step.endpoint)
		coord, err := resolver.Resolve(ctx, identifier)
		if err == nil && coord.IsZero() {
			err = errors.New("resolver returned no coordinate")
		}
		if err != nil {
			return nil, route.NewResolutionError(step.endpoint, identifier, err)
		}
		coords[step.endpoint] = coord
	}
	start, end := coords[station.EndpointStart], coords[station.EndpointEnd]

	if err := run.advance(route.StatusRequestingRoute); err != nil {
		return nil, err
	}
	res, err := s.requester.Request(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, route.NewUnexpectedError(errors.New("directions provider returned neither a route nor an error"))
	}

	if err := run.advance(route.StatusRendering); err != nil {
		return nil, err
	}
	return &SearchResult{
		Query:     q,
		Start:     start,
		End:       end,
		Route:     res,
		RequestID: run.requestID,
	}, nil
}

func (s *RouteSearchService) publishCompleted(ctx context.Context, run *searchRun, result *SearchResult) {
	evt := events.SearchCompletedEvent{
		RequestID:   run.requestID,
		Mode:        string(run.query.Mode),
		Start:       run.query.Start,
		End:         run.query.End,
		StartCoord:  result.Start.String(),
		EndCoord:    result.End.String(),
		RouteOption: result.Route.Option,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, run, events.SearchCompleted, evt)
}

func (s *RouteSearchService) publishFailed(ctx context.Context, run *searchRun, se *route.SearchError) {
	evt := events.SearchFailedEvent{
		RequestID:  run.requestID,
		Mode:       string(run.query.Mode),
		Start:      run.query.Start,
		End:        run.query.End,
		ErrorKind:  string(se.Kind),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, run, events.SearchFailed, evt)
}

// publishEvent is best effort: errors are logged and never change the search outcome.
func (s *RouteSearchService) publishEvent(ctx context.Context, run *searchRun, eventType string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		run.log.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = run.requestID

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishEvent(pubCtx, s.topic, cloudEvent); err != nil {
		run.log.Error("failed to publish event",
			zap.String("topic", s.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// searchRun tracks the state of one search through the status machine.
type searchRun struct {
	query     station.Query
	status    route.SearchStatus
	requestID string
	log       *zap.Logger
}

func newSearchRun(ctx context.Context, q station.Query, log *zap.Logger) *searchRun {
	requestID, _ := logger.RequestIDFromContext(ctx)
	run := &searchRun{
		query:     q,
		status:    route.StatusReceived,
		requestID: requestID,
		log: log.With(
			zap.String("mode", string(q.Mode)),
			zap.String("start", q.Start),
			zap.String("end", q.End),
		),
	}
	run.log.Debug("route search received")
	return run
}

func (r *searchRun) advance(next route.SearchStatus) error {
	if !r.status.CanTransitionTo(next) {
		return route.NewUnexpectedError(fmt.Errorf("invalid search transition %s -> %s", r.status, next))
	}
	r.log.Debug("route search transition",
		zap.String("from", r.status.String()),
		zap.String("to", next.String()),
	)
	r.status = next
	return nil
}

func (r *searchRun) fail(se *route.SearchError) {
	from := r.status
	if !r.status.IsTerminal() {
		r.status = route.StatusFailed
	}

	fields := []zap.Field{
		zap.String("failed_in", from.String()),
		zap.String("kind", string(se.Kind)),
		zap.String("message", se.Message),
	}
	if se.Err != nil {
		fields = append(fields, zap.Error(se.Err))
	}
	if se.Kind == route.KindUnexpected {
		r.log.Error("route search failed unexpectedly", fields...)
		return
	}
	r.log.Info("route search failed", fields...)
}
