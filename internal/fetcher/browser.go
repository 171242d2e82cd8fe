package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/observability"
)

// BrowserFetcher renders pages in a headless Chrome and returns the final HTML.
// It is meant for HTML product and review pages, not JSON endpoints.
type BrowserFetcher struct {
	Browser *rod.Browser
	Timeout time.Duration

	launcher *launcher.Launcher
}

// Replaced in tests, which have no Chrome to start.
var (
	launchBrowser  = func(l *launcher.Launcher) (string, error) { return l.Launch() }
	connectBrowser = func(b *rod.Browser) error { return b.Connect() }
	killBrowser    = func(l *launcher.Launcher) { l.Kill() }
)

// NewBrowserFetcher launches a browser. Close must be called when done.
func NewBrowserFetcher(headless bool, timeout time.Duration) (*BrowserFetcher, error) {
	l := launcher.New().Headless(headless)
	u, err := launchBrowser(l)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := connectBrowser(browser); err != nil {
		killBrowser(l)
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return &BrowserFetcher{Browser: browser, Timeout: timeout, launcher: l}, nil
}

// Close shuts the browser down and kills the process it was launched in.
func (f *BrowserFetcher) Close() error {
	err := f.Browser.Close()
	if f.launcher != nil {
		killBrowser(f.launcher)
	}
	return err
}

// Fetch opens url in a fresh stealth page and returns its rendered HTML.
// Rendered pages carry no status code, so only navigation failures are reported.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	start := time.Now()
	body, err := f.render(ctx, url, headers)
	status := http.StatusOK
	if err != nil {
		status = 0
	}
	observability.ObserveFetch("browser", hostOf(url), status, time.Since(start))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return body, nil
}

func (f *BrowserFetcher) render(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	page, err := stealth.Page(f.Browser)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Debug().Err(err).Str("url", url).Msg("failed to close page")
		}
	}()

	page = page.Context(ctx)
	if f.Timeout > 0 {
		page = page.Timeout(f.Timeout)
	}

	if len(headers) > 0 {
		dict := make([]string, 0, len(headers)*2)
		for k := range headers {
			dict = append(dict, k, headers.Get(k))
		}
		cleanup, err := page.SetExtraHeaders(dict)
		if err != nil {
			return nil, fmt.Errorf("failed to set headers: %w", err)
		}
		defer cleanup()
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for load: %w", err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read html: %w", err)
	}
	return []byte(html), nil
}
