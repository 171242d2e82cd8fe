package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	FetchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "fetch_requests_total", Help: "Outbound page fetches."},
		[]string{"fetcher", "host", "status"},
	)
	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scraper", Name: "fetch_duration_seconds",
			Help:    "Outbound page fetch duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"fetcher", "host"},
	)
	ReviewsScraped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "reviews_scraped_total", Help: "Review records assembled."},
		[]string{"site"},
	)
	PagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "review_pages_dropped_total", Help: "Review pages that contributed no records because of an error."},
		[]string{"site"},
	)
	ProductsScraped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "products_scraped_total", Help: "Products processed."},
		[]string{"site", "result"}, // result: ok|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "cache_events_total", Help: "Page cache hits/misses/sets."},
		[]string{"event"}, // event: hit|miss|set|error
	)
)

// InitRegistry registers the scraper collectors on a fresh registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(FetchRequests, FetchLatency, ReviewsScraped, PagesDropped, ProductsScraped, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func ObserveFetch(fetcher, host string, status int, dur time.Duration) {
	FetchRequests.WithLabelValues(fetcher, host, strconv.Itoa(status)).Inc()
	FetchLatency.WithLabelValues(fetcher, host).Observe(dur.Seconds())
}

func ObserveReviews(site string, n int) {
	ReviewsScraped.WithLabelValues(site).Add(float64(n))
}

func ObservePageDropped(site string) {
	PagesDropped.WithLabelValues(site).Inc()
}

func ObserveProduct(site string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ProductsScraped.WithLabelValues(site, result).Inc()
}

func ObserveCache(event string) {
	CacheEvents.WithLabelValues(event).Inc()
}
