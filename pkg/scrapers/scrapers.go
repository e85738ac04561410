// Package scrapers defines the capability contract every mall adapter
// implements and the registry that routes URLs to the adapter owning them.
package scrapers

import (
	"strings"

	"mallscout/pkg/models"
)

// MallScraper is the uniform capability set of one marketplace adapter.
// Search is total: transport failures, blocked requests and unparseable
// markup all degrade to an empty (or, outside production, fallback) slice.
type MallScraper interface {
	Name() models.MallID
	OwnsURL(url string) bool
	Scrape(url string) (*models.ProductDetail, error)
	Search(keyword string) []models.Listing
}

// Registry holds the adapters in fixed dispatch order. That order is also
// the merge tiebreak order in the aggregator.
type Registry struct {
	scrapers []MallScraper
}

func NewRegistry(scrapers ...MallScraper) *Registry {
	return &Registry{scrapers: scrapers}
}

func (r *Registry) All() []MallScraper {
	return r.scrapers
}

// ForURL returns the adapter claiming the URL, or nil. Ownership is expected
// to be exclusive; overlapping claims are a configuration bug, so the first
// claimant wins.
func (r *Registry) ForURL(url string) MallScraper {
	for _, s := range r.scrapers {
		if s.OwnsURL(url) {
			return s
		}
	}
	return nil
}

const (
	// SearchLimit bounds candidate listings per mall per search.
	SearchLimit = 5

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// UserAgent is the client identity sent on every upstream request. Mall
// search pages serve a dedicated bot response to default Go user agents.
func UserAgent() string {
	return userAgent
}

// OwnsDomain reports whether rawURL points at one of the given host
// fragments.
func OwnsDomain(rawURL string, domains ...string) bool {
	for _, d := range domains {
		if strings.Contains(rawURL, d) {
			return true
		}
	}
	return false
}
