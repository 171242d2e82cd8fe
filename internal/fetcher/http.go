package fetcher

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ReviewScraper/internal/observability"
)

// HTTPFetcher fetches pages with a plain HTTP client, rate limited per process.
type HTTPFetcher struct {
	client *resty.Client
	rl     *rate.Limiter
}

// NewHTTPFetcher builds a fetcher. rps <= 0 disables rate limiting.
func NewHTTPFetcher(userAgent string, timeout time.Duration, rps int) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps
	}
	return &HTTPFetcher{
		client: client,
		rl:     rate.NewLimiter(limit, burst),
	}
}

// Fetch performs a GET. Headers given here override the client defaults.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	if err := f.rl.Wait(ctx); err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	start := time.Now()
	res, err := f.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(headers).
		Get(url)
	if err != nil {
		observability.ObserveFetch("http", hostOf(url), 0, time.Since(start))
		return nil, &NetworkError{URL: url, Err: err}
	}
	observability.ObserveFetch("http", hostOf(url), res.StatusCode(), time.Since(start))

	if !res.IsSuccess() {
		log.Debug().Str("url", url).Int("status", res.StatusCode()).Msg("non-2xx response")
		return nil, &NetworkError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}
