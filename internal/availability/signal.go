package availability

import (
	"context"
	"time"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// SignalProvider supplies the current 0-100 popularity signal of a place.
type SignalProvider interface {
	CurrentSignal(ctx context.Context, place types.PlaceRecord, at time.Time) int
}

// Prefetcher is a SignalProvider that can load the signals of a whole result set at once.
// Prefetch returns a provider answering for those places at that instant.
type Prefetcher interface {
	SignalProvider
	Prefetch(ctx context.Context, places []types.PlaceRecord, at time.Time) SignalProvider
}

// SignalFunc adapts a function to SignalProvider.
type SignalFunc func(ctx context.Context, place types.PlaceRecord, at time.Time) int

func (f SignalFunc) CurrentSignal(ctx context.Context, place types.PlaceRecord, at time.Time) int {
	return f(ctx, place, at)
}

// SimulatedSignal fakes a live signal from rating and hour of day.
type SimulatedSignal struct {
	rng Rand
}

func NewSimulatedSignal(rng Rand) *SimulatedSignal {
	if rng == nil {
		rng = DefaultRand()
	}
	return &SimulatedSignal{rng: rng}
}

func (s *SimulatedSignal) CurrentSignal(_ context.Context, place types.PlaceRecord, at time.Time) int {
	return CurrentPopularityEstimate(place.Rating, at.Hour(), s.rng)
}

// DeclaredSignal trusts the popularity the provider declared and otherwise asks Fallback.
type DeclaredSignal struct {
	Fallback SignalProvider
}

func (d DeclaredSignal) CurrentSignal(ctx context.Context, place types.PlaceRecord, at time.Time) int {
	if place.Popularity != nil {
		return clamp(*place.Popularity, 0, 100)
	}
	if d.Fallback == nil {
		return 0
	}
	return clamp(d.Fallback.CurrentSignal(ctx, place, at), 0, 100)
}
