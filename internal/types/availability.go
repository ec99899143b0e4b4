package types

import "time"

// ForecastSlot is one anchor hour of the predicted availability curve.
type ForecastSlot struct {
	TimeLabel  string `json:"time"`
	Hour       int    `json:"hour"`
	Category   string `json:"category"`
	Likelihood int    `json:"likelihood"`
}

// ForecastResponse is the body of the availability forecast endpoint.
type ForecastResponse struct {
	DayOffset int            `json:"day_offset"`
	Weekday   string         `json:"weekday"`
	Slots     []ForecastSlot `json:"slots"`
}

// PopularityHistogram holds the stored hourly popularity (0-100) of one place on one weekday.
type PopularityHistogram struct {
	PlaceID   string      `json:"place_id"`
	Weekday   string      `json:"weekday"`
	Hours     map[int]int `json:"hours"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UpdatePopularityRequest replaces the histogram of one weekday.
type UpdatePopularityRequest struct {
	Weekday string         `json:"weekday"`
	Hours   map[string]int `json:"hours"`
}

// GeocodeResult is the first match for a free-text query.
type GeocodeResult struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}
