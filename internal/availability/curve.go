package availability

import (
	"fmt"
	"iter"
	"time"
)

const (
	weekendBoost   = 15
	futureJitter   = 5
	futureFloor    = 20
	futureCeiling  = 95
	weekendBusyLow = 9
	weekendBusyEnd = 17
)

type anchor struct {
	hour int
	base int
}

var curveAnchors = []anchor{
	{8, 90}, {10, 70}, {12, 30}, {14, 60}, {16, 50}, {18, 40},
}

// Prediction is the forecast for one anchor hour.
type Prediction struct {
	TimeLabel  string
	Hour       int
	Category   LikelihoodCategory
	Likelihood int
}

// PredictedAvailabilityCurve yields six predictions for the day now+dayOffset. The sequence
// is lazy and can be ranged over again; future days get fresh jitter each pass.
func PredictedAvailabilityCurve(now time.Time, dayOffset int, rng Rand) iter.Seq[Prediction] {
	if rng == nil {
		rng = DefaultRand()
	}
	weekend := isWeekend(now.AddDate(0, 0, dayOffset).Weekday())

	return func(yield func(Prediction) bool) {
		for _, a := range curveAnchors {
			l := a.base
			if weekend && a.hour >= weekendBusyLow && a.hour <= weekendBusyEnd {
				l = min(l+weekendBoost, 100)
			}
			if dayOffset > 0 {
				l += rng.IntN(2*futureJitter+1) - futureJitter
				l = clamp(l, futureFloor, futureCeiling)
			}
			p := Prediction{
				TimeLabel:  hourLabel(a.hour),
				Hour:       a.hour,
				Category:   LikelihoodCategoryOf(l),
				Likelihood: l,
			}
			if !yield(p) {
				return
			}
		}
	}
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// hourLabel renders a 24h hour as "8 AM", "12 PM", "6 PM".
func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}
