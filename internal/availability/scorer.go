// Package availability estimates how likely a seat is free at a venue.
//
// Busyness (three tiers) and likelihood category (four bands) are separate views over the
// 0-100 scale and are kept as separate functions.
package availability

import (
	"math/rand/v2"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

const (
	moderateThreshold = 30
	highThreshold     = 70

	peakBoost       = 30
	highRatingBoost = 20
	highRating      = 4.3

	baselineMin  = 20
	baselineSpan = 60
)

// peakWindows are inclusive hour ranges when venues tend to be crowded.
var peakWindows = [][2]int{{8, 10}, {12, 14}, {17, 19}}

// Rand is the source of jitter for simulated values.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand returns a goroutine-safe Rand backed by math/rand/v2.
func DefaultRand() Rand { return globalRand{} }

// BusynessFromPopularity maps a 0-100 popularity signal onto three tiers. A missing
// signal is low.
func BusynessFromPopularity(popularity *int) types.Busyness {
	if popularity == nil {
		return types.BusynessLow
	}
	p := clamp(*popularity, 0, 100)
	switch {
	case p >= highThreshold:
		return types.BusynessHigh
	case p >= moderateThreshold:
		return types.BusynessModerate
	default:
		return types.BusynessLow
	}
}

// LikelihoodFromBusyness returns the seat likelihood percentage for a tier.
func LikelihoodFromBusyness(b types.Busyness) int {
	switch b {
	case types.BusynessHigh:
		return 20
	case types.BusynessModerate:
		return 50
	default:
		return 85
	}
}

// CurrentPopularityEstimate simulates a live popularity value when the provider has none.
// The result is random per call and only a stand-in for real occupancy data.
func CurrentPopularityEstimate(rating *float64, hourOfDay int, rng Rand) int {
	if rng == nil {
		rng = DefaultRand()
	}
	p := baselineMin + rng.IntN(baselineSpan)
	if IsPeakHour(hourOfDay) {
		p = min(p+peakBoost, 100)
	}
	if rating != nil && *rating > highRating {
		p = min(p+highRatingBoost, 100)
	}
	return p
}

// IsPeakHour reports whether hour falls in one of the inclusive peak windows.
func IsPeakHour(hour int) bool {
	hour = clamp(hour, 0, 23)
	for _, w := range peakWindows {
		if hour >= w[0] && hour <= w[1] {
			return true
		}
	}
	return false
}

// LikelihoodCategory is the display band of a likelihood value.
type LikelihoodCategory string

const (
	LikelyAvailable LikelihoodCategory = "Likely Available"
	MayBeAvailable  LikelihoodCategory = "May Be Available"
	LimitedSeating  LikelihoodCategory = "Limited Seating"
	LikelyFull      LikelihoodCategory = "Likely Full"
)

// LikelihoodCategoryOf bands a likelihood for display.
func LikelihoodCategoryOf(likelihood int) LikelihoodCategory {
	switch {
	case likelihood >= 75:
		return LikelyAvailable
	case likelihood >= 50:
		return MayBeAvailable
	case likelihood >= 25:
		return LimitedSeating
	default:
		return LikelyFull
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
