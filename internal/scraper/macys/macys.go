package macys

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

const site = "macys"

// MacysScraper reads products and reviews from the Macy's product API.
type MacysScraper struct {
	Fetcher fetcher.Fetcher
	Headers http.Header
	Conf    config.MacysConfig
}

func New(f fetcher.Fetcher, headers http.Header, conf config.MacysConfig) *MacysScraper {
	return &MacysScraper{
		Fetcher: f,
		Headers: headers,
		Conf:    conf,
	}
}

func (s *MacysScraper) Site() string { return site }

// ScrapeProduct resolves the product ID of url, reads the product metadata
// and pages through its reviews. Review failures fail the whole product.
func (s *MacysScraper) ScrapeProduct(ctx context.Context, url string) (models.Product, error) {
	id, err := ProductID(url)
	if err != nil {
		return models.Product{}, err
	}

	raw, err := s.Fetcher.Fetch(ctx, ProductURL(s.Conf.APIURL, id), s.Headers)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	product, err := DecodeProduct(raw, s.Conf.ImageBaseURL)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	product.SourceSite = site
	product.ProductURL = url
	product.ProductID = id

	reviews, err := ScrapeReviews(ctx, s.Fetcher, s.Conf.APIURL, id, product.NumReviews, s.Headers)
	if err != nil {
		return models.Product{}, err
	}
	product.Reviews = reviews
	product.ScrapedAt = time.Now()

	log.Info().Str("url", url).Str("title", product.Title).Int("reviews", len(reviews)).Msg("product scraped")
	return product, nil
}

// PageScraper reads what the product HTML page shows. It collects no reviews.
type PageScraper struct {
	Fetcher fetcher.Fetcher
	Headers http.Header
	Conf    config.MacysConfig
}

func NewPageScraper(f fetcher.Fetcher, headers http.Header, conf config.MacysConfig) *PageScraper {
	return &PageScraper{
		Fetcher: f,
		Headers: headers,
		Conf:    conf,
	}
}

func (s *PageScraper) Site() string { return site }

func (s *PageScraper) ScrapeProduct(ctx context.Context, url string) (models.Product, error) {
	raw, err := s.Fetcher.Fetch(ctx, url, s.Headers)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to fetch product page %s: %w", url, err)
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to parse product page %s: %w", url, err)
	}

	product := ExtractProductPage(doc, s.Conf.BaseURL)
	product.SourceSite = site
	product.ProductURL = url
	if id, err := ProductID(url); err == nil {
		product.ProductID = id
	}
	product.ScrapedAt = time.Now()
	return product, nil
}
