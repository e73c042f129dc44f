//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/application"
	"github.com/seoul-transit/service-route-search/internal/config"
	"github.com/seoul-transit/service-route-search/internal/events"
	"github.com/seoul-transit/service-route-search/internal/handler"
	"github.com/seoul-transit/service-route-search/internal/naver"
	"github.com/seoul-transit/service-route-search/internal/repository"
)

const testTopic = "route.search.events"

// testInfra holds shared test infrastructure.
type testInfra struct {
	KafkaBrokers []string
	Cleanup      func()
}

// searchStack holds wired-up route search components behind a live HTTP server.
type searchStack struct {
	Server          *httptest.Server
	Provider        *stubProvider
	CleanupProducer func()
}

// setupContainers starts a Kafka testcontainer and pre-creates the events topic.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, testTopic)

	cleanup := func() {
		if err := testcontainers.TerminateContainer(kafkaContainer); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}

	return &testInfra{
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// stubProvider stands in for the Naver geocoding and directions endpoints.
type stubProvider struct {
	server          *httptest.Server
	geocodeCalls    atomic.Int32
	directionsCalls atomic.Int32
}

func newStubProvider(t *testing.T) *stubProvider {
	t.Helper()
	p := &stubProvider{}
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		p.geocodeCalls.Add(1)
		x, y := "127.0276368", "37.4979502"
		if r.URL.Query().Get("query") == "잠실역" {
			x, y = "127.1001930", "37.5132612"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"OK","addresses":[{"roadAddress":"stub","x":%q,"y":%q}]}`, x, y)
	})
	mux.HandleFunc("/directions", func(w http.ResponseWriter, r *http.Request) {
		p.directionsCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"message":"ok","route":{"trafast":[{"summary":{"distance":8400,"duration":1260000}}]}}`))
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

// setupSearchStack wires the full search stack against the stub provider and Kafka.
func setupSearchStack(t *testing.T, brokers []string) *searchStack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()

	provider := newStubProvider(t)
	client := naver.NewClient(config.NaverConfig{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		GeocodeURL:    provider.server.URL + "/geocode",
		DirectionsURL: provider.server.URL + "/directions",
		RouteOption:   config.DefaultRouteOption,
		Timeout:       5 * time.Second,
	}, logger)

	stations := repository.NewStaticStationRepository()
	producer := events.NewAsyncPublisher(events.NewProducer(brokers, logger), 0, 0, logger)
	svc := application.NewRouteSearchService(
		application.NewStaticResolver(stations),
		application.NewGeocodingResolver(client, logger),
		client,
		producer,
		testTopic,
		logger,
	)

	router, err := handler.NewRouter(
		logger,
		handler.NewRouteHandler(svc, stations, true),
		handler.NewHealthHandler("service-route-search", true, true),
	)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &searchStack{
		Server:          server,
		Provider:        provider,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) events.CloudEvent {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := events.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := events.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
	return ce
}

// consumeEvent reads from a Kafka topic until it finds an event matching the predicate.
func consumeEvent(t *testing.T, brokers []string, topic string, timeout time.Duration, match func(events.CloudEvent) bool) events.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event on topic %q", topic)
			}
			continue
		}
		ce, err := events.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if match(ce) {
			return ce
		}
	}
}

// eventFor matches events of the given type whose subject is the request ID.
func eventFor(eventType, requestID string) func(events.CloudEvent) bool {
	return func(ce events.CloudEvent) bool {
		return ce.Type == eventType && ce.Subject == requestID
	}
}

// decodeData unmarshals the event payload, failing the test on error.
func decodeData(t *testing.T, ce events.CloudEvent, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ce.Data, v))
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
