package bestbuy

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	thumbnailEndpoint = "d.jpg;maxHeight=54;maxWidth=54"
	// numbered thumbnails start at cv11
	firstNumberedThumbnail = 11
	maxNumberedThumbnails  = 40
)

var predefinedThumbnailPatterns = []string{"_s", "_r", "l", "_b"}

// SKU returns the skuId query value of a product URL.
func SKU(productURL string) string {
	parts := strings.Split(productURL, "skuId=")
	return parts[len(parts)-1]
}

// isPlaceholder reports whether the image host answered with its PNG "no image" body.
func isPlaceholder(body []byte) bool {
	return bytes.HasPrefix(body, []byte{0x89})
}

// ScrapeThumbnails probes the image host for the product's thumbnails.
// The fixed patterns are each kept when present; numbered ones are walked
// until the first missing image.
func (s *BestBuyScraper) ScrapeThumbnails(ctx context.Context, productURL string) []string {
	thumbnails := []string{}

	sku := SKU(productURL)
	if len(sku) <= 3 {
		log.Warn().Str("url", productURL).Msg("no sku in product url")
		return thumbnails
	}
	prefix := s.Conf.ImageBaseURL + sku[:len(sku)-3] + "/" + sku

	for _, pattern := range predefinedThumbnailPatterns {
		u := prefix + pattern + thumbnailEndpoint
		body, err := s.Fetcher.Fetch(ctx, u, s.Headers)
		if err != nil {
			log.Debug().Err(err).Str("thumbnail", u).Msg("thumbnail probe failed")
			continue
		}
		if !isPlaceholder(body) {
			thumbnails = append(thumbnails, u)
		}
	}

	for i := firstNumberedThumbnail; i < firstNumberedThumbnail+maxNumberedThumbnails; i++ {
		u := prefix + fmt.Sprintf("cv%d", i) + thumbnailEndpoint
		body, err := s.Fetcher.Fetch(ctx, u, s.Headers)
		if err != nil || isPlaceholder(body) {
			break
		}
		thumbnails = append(thumbnails, u)
	}
	return thumbnails
}
