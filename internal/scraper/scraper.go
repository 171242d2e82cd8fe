package scraper

import (
	"context"
	"errors"

	"ReviewScraper/internal/models"
)

// Error kinds shared by the site packages. Network failures are
// reported by the fetcher as fetcher.ErrNetwork.
var (
	// ErrParse means a selector matched nothing or the matched text was malformed.
	ErrParse = errors.New("parse error")
	// ErrDecode means a JSON payload lacked an expected key or had the wrong type.
	ErrDecode = errors.New("decode error")
)

// Scraper defines the basic behavior for all site scrapers.
type Scraper interface {
	// Site names the retailer, e.g. "bestbuy".
	Site() string

	// ScrapeProduct fetches one product URL and returns everything the site
	// pipeline extracts from it, reviews included.
	ScrapeProduct(ctx context.Context, url string) (models.Product, error)
}

// MinLen returns the smallest of the given lengths, or 0 when none are given.
// Positional record assembly truncates every field list to this length.
func MinLen(lengths ...int) int {
	if len(lengths) == 0 {
		return 0
	}
	m := lengths[0]
	for _, l := range lengths[1:] {
		if l < m {
			m = l
		}
	}
	return m
}
