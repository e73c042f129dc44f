package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seoul-transit/service-route-search/internal/domain/station"
	"github.com/seoul-transit/service-route-search/internal/logger"
	"github.com/seoul-transit/service-route-search/internal/naver"
	"github.com/seoul-transit/service-route-search/internal/repository"
)

type geocoderFunc func(ctx context.Context, query string) (station.Coordinate, error)

func (f geocoderFunc) Geocode(ctx context.Context, query string) (station.Coordinate, error) {
	return f(ctx, query)
}

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver(repository.NewStaticStationRepository())

	c, err := r.Resolve(context.Background(), "222")
	require.NoError(t, err)
	assert.Equal(t, "127.02761,37.49794", c.String())

	c, err = r.Resolve(context.Background(), "216")
	require.NoError(t, err)
	assert.Equal(t, "127.10022,37.51336", c.String())

	c, err = r.Resolve(context.Background(), "강남역")
	assert.ErrorIs(t, err, station.ErrStationNotFound)
	assert.True(t, c.IsZero())
}

func TestGeocodingResolver_Success(t *testing.T) {
	want := coord(t, "127.0276368,37.4979502")
	var got string
	r := NewGeocodingResolver(geocoderFunc(func(_ context.Context, q string) (station.Coordinate, error) {
		got = q
		return want, nil
	}), zap.NewNop())

	c, err := r.Resolve(context.Background(), "강남역")
	require.NoError(t, err)
	assert.Equal(t, want, c)
	assert.Equal(t, "강남역", got)
}

func TestGeocodingResolver_LogsCause(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		level string
		msg   string
	}{
		{name: "missing credentials", cause: naver.ErrMissingCredentials, level: "warn", msg: "geocoding skipped: NAVER_CLIENT_ID / NAVER_CLIENT_SECRET are not set"},
		{name: "no candidates", cause: naver.ErrNoCandidates, level: "info", msg: "geocoding found no address"},
		{name: "other", cause: errors.New("timeout"), level: "warn", msg: "geocoding failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			r := NewGeocodingResolver(geocoderFunc(func(context.Context, string) (station.Coordinate, error) {
				return station.Coordinate{}, tt.cause
			}), zap.New(core))

			ctx := logger.ContextWithRequestID(context.Background(), "req-7")
			c, err := r.Resolve(ctx, "없는역")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.cause)
			assert.True(t, c.IsZero())

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level.String())
			assert.Equal(t, tt.msg, entries[0].Message)
			assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
			assert.Equal(t, "없는역", entries[0].ContextMap()["query"])
		})
	}
}
