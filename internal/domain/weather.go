package domain

import "context"

// Extrapolation factors for turning OpenWeatherMap's last-hour rainfall into
// a monthly estimate comparable with the dataset's rainfall column.
const (
	hoursPerDay  = 24
	daysPerMonth = 30
)

// WeatherReading is an ephemeral snapshot of live conditions for a location.
// It is created per fetch and consumed immediately; it is never persisted.
type WeatherReading struct {
	Temperature     float64 `json:"temperature"`      // ℃
	MonthlyRainfall float64 `json:"monthly_rainfall"` // mm, extrapolated
	Month           int     `json:"month"`            // 1-12, current month
	Location        string  `json:"location"`         // resolved place name
}

// WeatherProvider fetches current conditions for a location string.
type WeatherProvider interface {
	Fetch(ctx context.Context, location string) (WeatherReading, error)
}

// EstimateMonthlyRainfall extrapolates an hourly rainfall figure (mm) to a
// monthly one. 2.0 mm/h → 1440 mm/month.
func EstimateMonthlyRainfall(hourly float64) float64 {
	return hourly * hoursPerDay * daysPerMonth
}
