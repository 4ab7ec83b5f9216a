// Package openweather implements domain.WeatherProvider against the
// OpenWeatherMap current-weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/observability"
)

// Client fetches current conditions for a location string. Each Fetch is one
// GET with the configured timeout; there are no retries — a failure is
// surfaced to the caller, which falls back to manual values.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch issues one GET ?q=<location>&appid=<key>&units=metric and maps the
// response into a WeatherReading. The hourly rainfall figure (absent → 0) is
// extrapolated to a monthly estimate; the month comes from the domain clock.
func (c *Client) Fetch(ctx context.Context, location string) (domain.WeatherReading, error) {
	params := url.Values{
		"q":     {location},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReading{}, apiError(resp)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReading{}, fmt.Errorf("decode response: %w", err)
	}

	reading := domain.WeatherReading{
		Temperature:     owm.Main.Temp,
		MonthlyRainfall: domain.EstimateMonthlyRainfall(owm.Rain.OneHour),
		Month:           domain.CurrentMonth(),
		Location:        owm.Name,
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	c.logger.Debug("weather fetched",
		"location", reading.Location,
		"temperature", reading.Temperature,
		"monthly_rainfall", reading.MonthlyRainfall,
	)
	return reading, nil
}

// apiError builds a descriptive error from a non-200 response, preferring the
// provider's message field when the body carries one.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Errorf("weather API error: status %d", resp.StatusCode)
}

// OpenWeatherMap API response types.

type response struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Name string `json:"name"`
}
