package domain

import "errors"

// Conditions is the feature vector a prediction runs on, in canonical terms.
type Conditions struct {
	Month       int     `json:"month"`
	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	SoilPH      float64 `json:"soil_ph"`
}

// ManualConditions are user-entered slider values.
type ManualConditions struct {
	Month       int     `json:"month"`
	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	SoilPH      float64 `json:"soil_ph"`
}

// LiveWeatherRequest asks for month, temperature, and rainfall to come from a
// live weather lookup. Soil pH is always user-entered, and Fallback supplies
// the manual values used when the lookup fails (weather failure is non-fatal).
type LiveWeatherRequest struct {
	Location string           `json:"location"`
	SoilPH   float64          `json:"soil_ph"`
	Fallback ManualConditions `json:"fallback"`
}

// RecommendRequest is a tagged union over the two input modes: exactly one of
// Manual or Live must be set.
type RecommendRequest struct {
	Manual *ManualConditions   `json:"manual,omitempty"`
	Live   *LiveWeatherRequest `json:"live,omitempty"`
}

var errBadRequestMode = errors.New("exactly one of manual or live must be set")

// Validate checks the union invariant.
func (r RecommendRequest) Validate() error {
	if (r.Manual == nil) == (r.Live == nil) {
		return errBadRequestMode
	}
	return nil
}

// Conditions converts manual inputs to a feature vector.
func (m ManualConditions) Conditions() Conditions {
	return Conditions{
		Month:       m.Month,
		Temperature: m.Temperature,
		Rainfall:    m.Rainfall,
		SoilPH:      m.SoilPH,
	}
}

// ApplyReading overlays a live weather reading on a live request: month,
// temperature, and rainfall come from the reading, soil pH stays manual.
// This is the explicit "live values overwrite manual defaults" rule.
func (l LiveWeatherRequest) ApplyReading(w WeatherReading) Conditions {
	return Conditions{
		Month:       w.Month,
		Temperature: w.Temperature,
		Rainfall:    w.MonthlyRainfall,
		SoilPH:      l.SoilPH,
	}
}

// FallbackConditions are the conditions used when the live lookup fails:
// the fallback sliders, with the request's soil pH taking precedence.
func (l LiveWeatherRequest) FallbackConditions() Conditions {
	c := l.Fallback.Conditions()
	c.SoilPH = l.SoilPH
	return c
}
