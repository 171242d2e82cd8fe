package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/database"
	"ReviewScraper/internal/models"
	"ReviewScraper/internal/observability"
)

const defaultLimit = 20

// Store is the read side of the product database.
type Store interface {
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	CountProducts(ctx context.Context, filters models.ProductFilters) (int, error)
	GetReviews(ctx context.Context, productURL string) (models.ProductReviewSet, error)
}

// NewRouter serves stored products, their reviews, metrics and a health check.
func NewRouter(store Store, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/products", productsHandler(store))
	r.Get("/products/reviews", reviewsHandler(store))
	if reg != nil {
		r.Handle("/metrics", observability.MetricsHandler(reg))
	}
	return r
}

// Start serves the API on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, store Store, reg *prometheus.Registry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(store, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http_request")
	})
}

func productsHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryParams := r.URL.Query()
		page, _ := strconv.Atoi(queryParams.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(queryParams.Get("limit"))
		if limit < 1 {
			limit = defaultLimit
		}

		filters := models.ProductFilters{
			SourceSite: queryParams.Get("site"),
			Brand:      queryParams.Get("brand"),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}

		totalProducts, err := store.CountProducts(r.Context(), filters)
		if err != nil {
			log.Error().Err(err).Msg("count products failed")
			http.Error(w, "Failed to count products", http.StatusInternalServerError)
			return
		}
		totalPages := int(math.Ceil(float64(totalProducts) / float64(limit)))

		products, err := store.GetProducts(r.Context(), filters)
		if err != nil {
			log.Error().Err(err).Msg("get products failed")
			http.Error(w, "Failed to get products", http.StatusInternalServerError)
			return
		}

		writeJSON(w, models.ProductsResponse{
			Data: products,
			Pagination: models.Pagination{
				TotalPages:  totalPages,
				CurrentPage: page,
			},
		})
	}
}

func reviewsHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productURL := r.URL.Query().Get("url")
		if productURL == "" {
			http.Error(w, "missing url parameter", http.StatusBadRequest)
			return
		}

		set, err := store.GetReviews(r.Context(), productURL)
		switch {
		case errors.Is(err, database.ErrProductNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
			return
		case err != nil:
			log.Error().Err(err).Str("url", productURL).Msg("get reviews failed")
			http.Error(w, "Failed to get reviews", http.StatusInternalServerError)
			return
		}
		writeJSON(w, set)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}
