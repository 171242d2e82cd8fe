package bestbuy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/models"
	"ReviewScraper/pkg/config"
)

const site = "bestbuy"

// BestBuyScraper scrapes Best Buy product pages and their HTML review listings.
type BestBuyScraper struct {
	Fetcher fetcher.Fetcher
	Headers http.Header
	Conf    config.BestBuyConfig
}

func New(f fetcher.Fetcher, headers http.Header, conf config.BestBuyConfig) *BestBuyScraper {
	return &BestBuyScraper{
		Fetcher: f,
		Headers: headers,
		Conf:    conf,
	}
}

func (s *BestBuyScraper) Site() string { return site }

// ScrapeProduct extracts product info, thumbnails, overview and reviews for url.
// Only a failure to fetch or parse the product page itself is returned;
// every section below that falls back to empty values.
func (s *BestBuyScraper) ScrapeProduct(ctx context.Context, url string) (models.Product, error) {
	log.Info().Str("url", url).Msg("scraping product")

	raw, err := s.Fetcher.Fetch(ctx, url, s.Headers)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to fetch product page %s: %w", url, err)
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to parse product page %s: %w", url, err)
	}

	product := models.Product{
		SourceSite: site,
		ProductURL: url,
		ProductID:  SKU(url),
	}

	if info, err := ExtractProductInfo(doc); err == nil {
		product.Brand = info.Company
		product.Title = info.ProductName
	} else {
		log.Warn().Err(err).Str("url", url).Msg("product info not found")
	}

	product.Thumbnails = s.ScrapeThumbnails(ctx, url)

	if overview, err := ExtractOverview(doc); err == nil {
		product.Description = overview
	} else {
		log.Warn().Err(err).Str("url", url).Msg("overview not found")
	}

	product.Reviews = ScrapeReviews(ctx, s.Fetcher, url, s.Headers).Reviews
	product.NumReviews = len(product.Reviews)
	product.ScrapedAt = time.Now()

	log.Info().Str("url", url).Str("title", product.Title).Int("thumbnails", len(product.Thumbnails)).
		Int("reviews", len(product.Reviews)).Msg("product scraped")
	return product, nil
}
