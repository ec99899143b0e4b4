// Package assembler turns raw place-search results into scored, filtered locations.
package assembler

import (
	"context"
	"math"
	"time"

	"github.com/Danielle-Barbieri/seat-scout/internal/availability"
	"github.com/Danielle-Barbieri/seat-scout/internal/geo"
	"github.com/Danielle-Barbieri/seat-scout/internal/openhours"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// Assembler filters and normalises place records.
type Assembler struct {
	signals  availability.SignalProvider
	onReject func(types.PlaceRecord, Rejection)
}

type Option func(*Assembler)

// WithRejectionObserver registers a callback for every dropped record.
func WithRejectionObserver(fn func(types.PlaceRecord, Rejection)) Option {
	return func(a *Assembler) {
		a.onReject = fn
	}
}

func New(signals availability.SignalProvider, opts ...Option) *Assembler {
	if signals == nil {
		signals = availability.DeclaredSignal{Fallback: availability.NewSimulatedSignal(nil)}
	}
	a := &Assembler{signals: signals}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble filters records, resolves their kind and scores the survivors. origin may be nil,
// in which case distance and walking time are left unset. Provider order is kept.
func (a *Assembler) Assemble(ctx context.Context, records []types.PlaceRecord, origin *types.Coordinates, kind types.KindFilter, at time.Time) []types.NormalizedLocation {
	kept := make([]types.PlaceRecord, 0, len(records))
	venues := make([]types.VenueKind, 0, len(records))
	for _, rec := range records {
		venue, rejection := Classify(rec)
		if rejection != "" {
			if a.onReject != nil {
				a.onReject(rec, rejection)
			}
			continue
		}
		if !kind.Matches(venue) {
			continue
		}
		kept = append(kept, rec)
		venues = append(venues, venue)
	}

	signals := a.signals
	if p, ok := signals.(availability.Prefetcher); ok && len(kept) > 0 {
		signals = p.Prefetch(ctx, kept, at)
	}

	out := make([]types.NormalizedLocation, 0, len(kept))
	for i, rec := range kept {
		out = append(out, a.normalize(ctx, signals, rec, venues[i], origin, at))
	}
	return out
}

func (a *Assembler) normalize(ctx context.Context, signals availability.SignalProvider, rec types.PlaceRecord, venue types.VenueKind, origin *types.Coordinates, at time.Time) types.NormalizedLocation {
	signal := signals.CurrentSignal(ctx, rec, at)
	busyness := availability.BusynessFromPopularity(&signal)

	loc := types.NormalizedLocation{
		ID:          rec.ID,
		Name:        rec.Name,
		Kind:        venue,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		PlusCode:    geo.PlusCode(rec.Latitude, rec.Longitude),
		Address:     rec.Address,
		Busyness:    busyness,
		Likelihood:  availability.LikelihoodFromBusyness(busyness),
		HasWifi:     venue == types.VenueCafe,
		Rating:      rec.Rating,
		RatingCount: rec.RatingCount,
	}

	if origin != nil {
		d := geo.DistanceMeters(origin.Lat, origin.Lng, rec.Latitude, rec.Longitude)
		distance := int(math.Round(d))
		walking := geo.WalkingMinutes(d)
		loc.Distance = &distance
		loc.WalkingTime = &walking
	}

	if len(rec.WeekdayDescriptions) > 0 {
		loc.OpeningHours = &types.OpeningHours{
			WeekdayDescriptions: append([]string(nil), rec.WeekdayDescriptions...),
			OpenNow:             rec.OpenNow,
		}
	}
	return loc
}

// Filter is the client-side re-filter over assembled locations. DayOffset and Hour only
// apply when both are set.
type Filter struct {
	Kind      types.KindFilter
	DayOffset *int
	Hour      *int
}

// PostFilter narrows locations by kind and by being open at (DayOffset, Hour). Locations
// without hours are kept.
func PostFilter(locations []types.NormalizedLocation, f Filter, now time.Time) []types.NormalizedLocation {
	filtered := make([]types.NormalizedLocation, 0, len(locations))
	for _, loc := range locations {
		if !f.Kind.Matches(loc.Kind) {
			continue
		}
		if f.DayOffset != nil && f.Hour != nil {
			var hours []string
			if loc.OpeningHours != nil {
				hours = loc.OpeningHours.WeekdayDescriptions
			}
			if !openhours.IsOpenAt(hours, now, *f.DayOffset, *f.Hour) {
				continue
			}
		}
		filtered = append(filtered, loc)
	}
	return filtered
}
