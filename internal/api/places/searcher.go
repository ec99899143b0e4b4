package places

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Danielle-Barbieri/seat-scout/app/observability/metrics"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// sharedSearchTimeout bounds one upstream search shared by concurrent callers.
const sharedSearchTimeout = 30 * time.Second

// NearbySearcher is the single-kind search primitive the Searcher builds on.
type NearbySearcher interface {
	SearchNearby(ctx context.Context, lat, lng float64, kind types.VenueKind) ([]types.PlaceRecord, error)
}

// Searcher answers a Query, fanning out one request per kind for KindAll.
// Results are cached for a short TTL keyed by a ~100 m grid cell and kind.
type Searcher struct {
	upstream NearbySearcher
	cache    *cache.Cache
	group    singleflight.Group
	logger   *slog.Logger
}

func NewSearcher(upstream NearbySearcher, ttl time.Duration, logger *slog.Logger) *Searcher {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Searcher{
		upstream: upstream,
		cache:    cache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// Search returns raw place records in provider order. Cafe results precede
// library results when both kinds are requested.
func (s *Searcher) Search(ctx context.Context, q Query) ([]types.PlaceRecord, error) {
	switch q.Kind {
	case types.KindCafe:
		return s.searchKind(ctx, q.Lat, q.Lng, types.VenueCafe)
	case types.KindLibrary:
		return s.searchKind(ctx, q.Lat, q.Lng, types.VenueLibrary)
	}

	kinds := []types.VenueKind{types.VenueCafe, types.VenueLibrary}
	results := make([][]types.PlaceRecord, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			recs, err := s.searchKind(gctx, q.Lat, q.Lng, kind)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var merged []types.PlaceRecord
	for _, recs := range results {
		for _, r := range recs {
			if _, dup := seen[r.ID]; dup && r.ID != "" {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged, nil
}

func (s *Searcher) searchKind(ctx context.Context, lat, lng float64, kind types.VenueKind) ([]types.PlaceRecord, error) {
	key := cacheKey(lat, lng, kind)
	if cached, found := s.cache.Get(key); found {
		metrics.Get().CacheHitsTotal.Add(ctx, 1)
		s.logger.DebugContext(ctx, "Places cache hit", slog.String("key", key))
		return cached.([]types.PlaceRecord), nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		// The flight is shared, so no single caller's cancellation may end it.
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedSearchTimeout)
		defer cancel()
		recs, err := s.upstream.SearchNearby(flightCtx, lat, lng, kind)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, recs, cache.DefaultExpiration)
		return recs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.Get().UpstreamErrorsTotal.Add(ctx, 1)
			return nil, res.Err
		}
		return res.Val.([]types.PlaceRecord), nil
	}
}

func cacheKey(lat, lng float64, kind types.VenueKind) string {
	return fmt.Sprintf("%.3f:%.3f:%s", lat, lng, kind)
}
