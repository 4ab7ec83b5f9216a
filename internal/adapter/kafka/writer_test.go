package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)
	rec := domain.Recommendation{
		Crop:           "Maize",
		Conditions:     domain.Conditions{Month: 5, Temperature: 25, Rainfall: 800, SoilPH: 6.5},
		Source:         domain.SourceLive,
		CommonProblems: "drought risk",
		YieldTier:      "medium",
		CreatedAt:      now,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("Maize"), msg.Key)
	assert.Contains(t, string(msg.Value), `"crop":"Maize"`)
	assert.Contains(t, string(msg.Value), `"source":"live"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.SourceLive), msg.Headers[0].Value)
	assert.Equal(t, "created_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_OmitsEmptyWarning(t *testing.T) {
	rec := domain.Recommendation{
		Crop:      "Rice",
		Source:    domain.SourceManual,
		CreatedAt: time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), "warning")
}
