package fetcher

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/observability"
)

// PageStore keeps fetched bodies by URL.
type PageStore interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Set(ctx context.Context, url string, body []byte, ttl time.Duration) error
}

// Cached serves repeated fetches from a PageStore. Only successful fetches are stored;
// store failures are logged and never fail the fetch.
type Cached struct {
	Next  Fetcher
	Store PageStore
	TTL   time.Duration
}

func (c *Cached) Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	body, ok, err := c.Store.Get(ctx, url)
	switch {
	case err != nil:
		observability.ObserveCache("error")
		log.Warn().Err(err).Str("url", url).Msg("page cache read failed")
	case ok:
		observability.ObserveCache("hit")
		return body, nil
	default:
		observability.ObserveCache("miss")
	}

	body, err = c.Next.Fetch(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	if err := c.Store.Set(ctx, url, body, c.TTL); err != nil {
		observability.ObserveCache("error")
		log.Warn().Err(err).Str("url", url).Msg("page cache write failed")
	} else {
		observability.ObserveCache("set")
	}
	return body, nil
}
