package domain

import "time"

// Recommendation sources.
const (
	SourceManual       = "manual"
	SourceLive         = "live"
	SourceLiveFallback = "live-fallback"
)

// Recommendation is the outcome of one prediction: the chosen crop, the
// conditions it was predicted from, and where those conditions came from.
// Warning is set when a live lookup failed and fallback values were used.
type Recommendation struct {
	Crop           string     `json:"crop"`
	Conditions     Conditions `json:"conditions"`
	Source         string     `json:"source"`
	Warning        string     `json:"warning,omitempty"`
	CommonProblems string     `json:"common_problems,omitempty"`
	YieldTier      string     `json:"yield_tier,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
