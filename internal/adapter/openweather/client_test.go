package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/observability"
)

const testAPIKey = "test-key"

func testClient(baseURL string) *Client {
	return NewClient(testAPIKey, baseURL, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
}

func TestClient_Fetch_Success(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.September, 3, 8, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Beijing", r.URL.Query().Get("q"))
		assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main":{"temp":21.4},"rain":{"1h":2.0},"name":"Beijing"}`))
	}))
	defer srv.Close()

	reading, err := testClient(srv.URL).Fetch(context.Background(), "Beijing")
	require.NoError(t, err)

	assert.Equal(t, 21.4, reading.Temperature)
	assert.Equal(t, 1440.0, reading.MonthlyRainfall, "2.0 mm/h extrapolates to 2.0*24*30")
	assert.Equal(t, 9, reading.Month)
	assert.Equal(t, "Beijing", reading.Location)
}

func TestClient_Fetch_NoRainField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main":{"temp":30.1},"name":"Cairo"}`))
	}))
	defer srv.Close()

	reading, err := testClient(srv.URL).Fetch(context.Background(), "Cairo")
	require.NoError(t, err)
	assert.Equal(t, 0.0, reading.MonthlyRainfall)
}

func TestClient_Fetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "city not found")
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testAPIKey, srv.URL, 50*time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)

	_, err := c.Fetch(context.Background(), "Beijing")
	require.Error(t, err)
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "Beijing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
