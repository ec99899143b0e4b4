package popularity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Danielle-Barbieri/seat-scout/internal/availability"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

const lookupTimeout = 250 * time.Millisecond

var _ availability.Prefetcher = (*SignalProvider)(nil)

// SignalProvider reads the stored histogram slot for (place, weekday, hour) and
// defers to its fallback when nothing is stored or the lookup fails.
type SignalProvider struct {
	repo     Repository
	fallback availability.SignalProvider
	logger   *slog.Logger
}

func NewSignalProvider(repo Repository, fallback availability.SignalProvider, logger *slog.Logger) *SignalProvider {
	return &SignalProvider{repo: repo, fallback: fallback, logger: logger}
}

func (p *SignalProvider) CurrentSignal(ctx context.Context, place types.PlaceRecord, at time.Time) int {
	if place.ID != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		v, err := p.repo.PopularityAt(lookupCtx, place.ID, at.Weekday(), at.Hour())
		cancel()
		switch {
		case err == nil:
			return min(max(v, 0), 100)
		case !errors.Is(err, ErrNotFound):
			p.logger.WarnContext(ctx, "Popularity lookup failed, using fallback",
				slog.String("place_id", place.ID), slog.Any("error", err))
		}
	}
	if p.fallback == nil {
		return 0
	}
	return p.fallback.CurrentSignal(ctx, place, at)
}

// Prefetch loads the stored slot at (at.Weekday(), at.Hour()) for every place in one query.
// A failed load is logged and every place falls back.
func (p *SignalProvider) Prefetch(ctx context.Context, places []types.PlaceRecord, at time.Time) availability.SignalProvider {
	ids := make([]string, 0, len(places))
	for _, place := range places {
		if place.ID != "" {
			ids = append(ids, place.ID)
		}
	}

	var stored map[string]int
	if len(ids) > 0 {
		lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		var err error
		stored, err = p.repo.PopularityForPlaces(lookupCtx, ids, at.Weekday(), at.Hour())
		cancel()
		if err != nil {
			p.logger.WarnContext(ctx, "Popularity batch lookup failed, using fallback",
				slog.Int("places", len(ids)), slog.Any("error", err))
			stored = nil
		}
	}
	return &storedSnapshot{stored: stored, fallback: p.fallback}
}

// storedSnapshot answers from a prefetched slot table.
type storedSnapshot struct {
	stored   map[string]int
	fallback availability.SignalProvider
}

func (s *storedSnapshot) CurrentSignal(ctx context.Context, place types.PlaceRecord, at time.Time) int {
	if v, ok := s.stored[place.ID]; ok && place.ID != "" {
		return min(max(v, 0), 100)
	}
	if s.fallback == nil {
		return 0
	}
	return s.fallback.CurrentSignal(ctx, place, at)
}
