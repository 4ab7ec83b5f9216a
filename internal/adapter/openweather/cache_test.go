package openweather

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/observability"
)

type countingProvider struct {
	calls   int
	reading domain.WeatherReading
	err     error
}

func (p *countingProvider) Fetch(_ context.Context, _ string) (domain.WeatherReading, error) {
	p.calls++
	return p.reading, p.err
}

func TestCachedProvider_Hit(t *testing.T) {
	inner := &countingProvider{reading: domain.WeatherReading{Temperature: 20, Location: "Beijing"}}
	cached := NewCachedProvider(inner, 10*time.Minute, observability.NewMetricsForTesting())

	r1, err := cached.Fetch(context.Background(), "Beijing")
	require.NoError(t, err)
	r2, err := cached.Fetch(context.Background(), "beijing") // key is case-insensitive
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedProvider_Expiry(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	inner := &countingProvider{reading: domain.WeatherReading{Location: "Beijing"}}
	cached := NewCachedProvider(inner, 10*time.Minute, observability.NewMetricsForTesting())

	_, err := cached.Fetch(context.Background(), "Beijing")
	require.NoError(t, err)

	fakeClock.Advance(11 * time.Minute)

	_, err = cached.Fetch(context.Background(), "Beijing")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry should refetch")
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: context.DeadlineExceeded}
	cached := NewCachedProvider(inner, 10*time.Minute, observability.NewMetricsForTesting())

	_, err := cached.Fetch(context.Background(), "Beijing")
	require.Error(t, err)
	_, err = cached.Fetch(context.Background(), "Beijing")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestNewCachedProvider_ZeroTTLDisables(t *testing.T) {
	inner := &countingProvider{}
	got := NewCachedProvider(inner, 0, observability.NewMetricsForTesting())
	assert.Same(t, domain.WeatherProvider(inner), got)
}
