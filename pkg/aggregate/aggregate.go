// Package aggregate fans a keyword search out to every registered mall
// adapter, collects all buckets and derives one price-sorted merged view.
package aggregate

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"mallscout/pkg/cache"
	"mallscout/pkg/logger"
	"mallscout/pkg/models"
	"mallscout/pkg/scrapers"
)

// Result keeps the raw per-mall buckets alongside the merged presentation
// view; callers that need provenance use ByMall.
type Result struct {
	ByMall     map[models.MallID][]models.Listing `json:"results"`
	Merged     []models.Listing                   `json:"merged"`
	TotalCount int                                `json:"totalCount"`
	SearchedAt time.Time                          `json:"searchedAt"`
}

type Aggregator struct {
	registry *scrapers.Registry
	store    *cache.Store // optional
}

func New(registry *scrapers.Registry, store *cache.Store) *Aggregator {
	return &Aggregator{registry: registry, store: store}
}

// SearchAll validates the keyword, then runs every adapter concurrently and
// waits for all of them. A slow or failing mall only degrades its own
// bucket; siblings are never cancelled. Zero results across all malls is a
// valid outcome, not an error.
func (a *Aggregator) SearchAll(keyword string) (*Result, error) {
	keyword = strings.TrimSpace(keyword)
	if utf8.RuneCountInString(keyword) < 2 {
		return nil, models.ErrInvalidKeyword
	}

	all := a.registry.All()
	buckets := make([][]models.Listing, len(all))

	// One goroutine per mall, each writing only its own slot; join on all.
	var wg sync.WaitGroup
	for i, s := range all {
		wg.Add(1)
		go func(i int, s scrapers.MallScraper) {
			defer wg.Done()
			buckets[i] = a.searchOne(s, keyword)
		}(i, s)
	}
	wg.Wait()

	result := &Result{
		ByMall:     make(map[models.MallID][]models.Listing, len(all)),
		SearchedAt: time.Now(),
	}
	for i, s := range all {
		result.ByMall[s.Name()] = buckets[i]
		result.Merged = append(result.Merged, buckets[i]...)
		result.TotalCount += len(buckets[i])
	}

	// Stable: equal prices keep registry dispatch order, so the merged
	// ordering never depends on which network call finished first.
	sort.SliceStable(result.Merged, func(i, j int) bool {
		return result.Merged[i].Price < result.Merged[j].Price
	})

	return result, nil
}

func (a *Aggregator) searchOne(s scrapers.MallScraper, keyword string) []models.Listing {
	if a.store != nil {
		if cached, ok := a.store.Get(s.Name(), keyword); ok {
			logger.Dedup("[%s] cache hit for %q", s.Name(), keyword)
			return cached
		}
	}

	raw := s.Search(keyword)

	// Adapters already filter, but the invariant matters enough to hold at
	// the boundary too: nothing without a name and a positive price leaves
	// the aggregator.
	listings := make([]models.Listing, 0, len(raw))
	for _, l := range raw {
		if l.Valid() {
			listings = append(listings, l)
		}
	}

	if a.store != nil {
		a.store.Set(s.Name(), keyword, listings)
	}
	return listings
}
