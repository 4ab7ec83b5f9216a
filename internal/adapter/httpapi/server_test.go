package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-advisor-service/internal/adapter/httpapi"
	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/recommend"
)

type mockService struct {
	rec          domain.Recommendation
	recommendErr error
	history      []domain.Recommendation
	historyErr   error
	readyErr     error
	gotRequest   domain.RecommendRequest
}

func (m *mockService) Recommend(_ context.Context, req domain.RecommendRequest) (domain.Recommendation, error) {
	m.gotRequest = req
	return m.rec, m.recommendErr
}

func (m *mockService) History(_ context.Context) ([]domain.Recommendation, error) {
	return m.history, m.historyErr
}

func (m *mockService) Dataset() (*domain.Table, domain.Columns) {
	return &domain.Table{
			Headers: []string{"month", "crop"},
			Rows:    []domain.Row{{"month": "5", "crop": "Maize"}},
		}, domain.Columns{
			domain.FieldMonth: "month",
			domain.FieldCrop:  "crop",
		}
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }

func newTestServer(svc *mockService) *httpapi.Server {
	return httpapi.NewServer(":0", svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIndexServesPage(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Crop Advisor")
}

func TestRecommendEndpoint(t *testing.T) {
	svc := &mockService{rec: domain.Recommendation{
		Crop:           "Maize",
		Conditions:     domain.Conditions{Month: 5, Temperature: 25, Rainfall: 800, SoilPH: 6.5},
		Source:         domain.SourceManual,
		CommonProblems: "drought risk",
		YieldTier:      "medium",
		CreatedAt:      time.Date(2026, time.May, 10, 9, 0, 0, 0, time.UTC),
	}}
	srv := newTestServer(svc)

	body := `{"manual":{"month":5,"temperature":25,"rainfall":800,"soil_ph":6.5}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(body))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Maize", got.Crop)
	assert.Equal(t, "drought risk", got.CommonProblems)
	assert.Equal(t, "medium", got.YieldTier)

	require.NotNil(t, svc.gotRequest.Manual)
	assert.Equal(t, 5, svc.gotRequest.Manual.Month)
}

func TestRecommendEndpoint_BadJSON(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader("{not json"))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpoint_InvalidRequest(t *testing.T) {
	svc := &mockService{recommendErr: recommend.ErrInvalidRequest}
	srv := newTestServer(svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{}`))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpoint_InternalError(t *testing.T) {
	svc := &mockService{recommendErr: errors.New("model is not fitted")}
	srv := newTestServer(svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend",
		strings.NewReader(`{"manual":{"month":5}}`))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body["error"], "not fitted", "internal detail must not leak")
}

func TestDatasetEndpoint(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Headers []string            `json:"headers"`
		Rows    []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"month", "crop"}, body.Headers)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "Maize", body.Rows[0]["crop"])
}

func TestHistoryEndpoint(t *testing.T) {
	svc := &mockService{history: []domain.Recommendation{
		{Crop: "Rice", Source: domain.SourceLive},
		{Crop: "Wheat", Source: domain.SourceManual},
	}}
	srv := newTestServer(svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list []domain.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Rice", list[0].Crop)
}

func TestHistoryEndpoint_Error(t *testing.T) {
	svc := &mockService{historyErr: errors.New("db closed")}
	srv := newTestServer(svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_NotReady(t *testing.T) {
	srv := newTestServer(&mockService{readyErr: errors.New("model is not fitted yet")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
