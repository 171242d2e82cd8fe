// Package fetchertest provides an in-memory fetcher for tests.
package fetchertest

import (
	"context"
	"net/http"
	"sync"

	"ReviewScraper/internal/fetcher"
)

// Static answers from fixed bodies. Unknown URLs fail with a 404 NetworkError.
type Static struct {
	Pages  map[string]string
	Errors map[string]error

	mu       sync.Mutex
	requests []string
	headers  []http.Header
}

func New() *Static {
	return &Static{Pages: map[string]string{}, Errors: map[string]error{}}
}

// Page registers body for url and returns s for chaining.
func (s *Static) Page(url, body string) *Static {
	s.Pages[url] = body
	return s
}

// Fail makes url fail with err.
func (s *Static) Fail(url string, err error) *Static {
	s.Errors[url] = err
	return s
}

func (s *Static) Fetch(_ context.Context, url string, headers http.Header) ([]byte, error) {
	s.mu.Lock()
	s.requests = append(s.requests, url)
	s.headers = append(s.headers, headers.Clone())
	s.mu.Unlock()

	if err, ok := s.Errors[url]; ok {
		return nil, err
	}
	body, ok := s.Pages[url]
	if !ok {
		return nil, &fetcher.NetworkError{URL: url, StatusCode: http.StatusNotFound}
	}
	return []byte(body), nil
}

// Requests returns the requested URLs in call order.
func (s *Static) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Headers returns the headers sent with each request, in call order.
func (s *Static) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}
