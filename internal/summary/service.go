package summary

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Counter reports the total rows of one entity.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Counters bundles the per-entity counters the overview fans out over.
type Counters struct {
	Products     Counter
	Warehouses   Counter
	Distributors Counter
	Orders       Counter
	Sales        Counter
	Activities   Counter
}

// Overview holds the admin dashboard entity counts.
type Overview struct {
	Products     int64 `json:"products"`
	Warehouses   int64 `json:"warehouses"`
	Distributors int64 `json:"distributors"`
	Orders       int64 `json:"orders"`
	Sales        int64 `json:"sales"`
	Activities   int64 `json:"activities"`
}

// Service assembles the admin overview. Counts are fanned out concurrently,
// cached in Redis, and concurrent cache misses collapse to one load.
type Service struct {
	counters Counters
	cache    *Cache
	group    singleflight.Group
}

func NewService(counters Counters, cache *Cache) *Service {
	return &Service{counters: counters, cache: cache}
}

// Overview returns the entity counts, served from cache when warm.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, "summary", "overview")
	if err != nil {
		return Overview{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var overview Overview
		err := s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
			return s.load(ctx)
		})
		return overview, err
	})
	if err != nil {
		return Overview{}, err
	}
	return result.(Overview), nil
}

// Refresh recomputes the overview and primes the cache under a new version.
func (s *Service) Refresh(ctx context.Context) (Overview, error) {
	if err := s.cache.Bump(ctx); err != nil {
		return Overview{}, err
	}
	return s.Overview(ctx)
}

func (s *Service) load(ctx context.Context) (Overview, error) {
	var overview Overview
	g, ctx := errgroup.WithContext(ctx)

	count := func(c Counter, dest *int64) func() error {
		return func() error {
			n, err := c.Count(ctx)
			if err != nil {
				return err
			}
			*dest = n
			return nil
		}
	}

	g.Go(count(s.counters.Products, &overview.Products))
	g.Go(count(s.counters.Warehouses, &overview.Warehouses))
	g.Go(count(s.counters.Distributors, &overview.Distributors))
	g.Go(count(s.counters.Orders, &overview.Orders))
	g.Go(count(s.counters.Sales, &overview.Sales))
	g.Go(count(s.counters.Activities, &overview.Activities))

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}
