package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNetwork is matched by every *NetworkError.
var ErrNetwork = errors.New("network error")

// Fetcher retrieves the raw bytes of a page.
// Implementations fail with a *NetworkError when the host is unreachable
// or the response status is not 2xx.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error)
}

// NetworkError reports a failed fetch. StatusCode is 0 when no response arrived.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}
	return []error{ErrNetwork, e.Err}
}

// DefaultHeaders returns the request headers the site scrapers send.
func DefaultHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	return h
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid"
	}
	return u.Host
}
