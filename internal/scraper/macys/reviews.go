package macys

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/models"
	"ReviewScraper/internal/observability"
	"ReviewScraper/internal/scraper"
)

// The product page shows the first 8 reviews inline; the review API is
// paged from there in steps of 30. Inline reviews are not fetched here.
const (
	inlineReviewCount = 8
	firstReviewOffset = 8
	reviewOffsetStep  = 30
)

// missingTitle stands in for reviews without a title, absent or null.
const missingTitle = "N/A"

// ReviewOffsets lists the API offsets to request for total reviews.
func ReviewOffsets(total int) []int {
	if total <= inlineReviewCount {
		return nil
	}
	var offsets []int
	for offset := firstReviewOffset; offset < total; offset += reviewOffsetStep {
		offsets = append(offsets, offset)
	}
	return offsets
}

// PlanPagination describes the review requests for a product with total reviews.
func PlanPagination(total int) models.PaginationPlan {
	return models.PaginationPlan{
		TotalItems: total,
		PageSize:   reviewOffsetStep,
		Offsets:    ReviewOffsets(total),
	}
}

// ReviewsURL is the review API address of productID at offset.
func ReviewsURL(apiURL, productID string, offset int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	return apiURL + "/" + url.PathEscape(productID) + "/reviews?" + q.Encode()
}

// ScrapeReviews pages through the review API. Any fetch or decode failure
// stops the walk and is returned; no partial result is kept.
func ScrapeReviews(ctx context.Context, f fetcher.Fetcher, apiURL, productID string, total int, headers http.Header) ([]models.ReviewRecord, error) {
	plan := PlanPagination(total)
	records := []models.ReviewRecord{}

	for _, offset := range plan.Offsets {
		u := ReviewsURL(apiURL, productID, offset)
		raw, err := f.Fetch(ctx, u, headers)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reviews of %s at offset %d: %w", productID, offset, err)
		}
		page, err := DecodeReviewPage(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode reviews of %s at offset %d: %w", productID, offset, err)
		}
		records = append(records, page...)
	}

	observability.ObserveReviews(site, len(records))
	log.Info().Str("product_id", productID).Int("total", total).Int("requests", len(plan.Offsets)).
		Int("reviews", len(records)).Msg("reviews scraped")
	return records, nil
}

// DecodeReviewPage maps the review.reviews array of one API response onto records.
func DecodeReviewPage(raw []byte) ([]models.ReviewRecord, error) {
	var payload struct {
		Review *struct {
			Reviews []object `json:"reviews"`
		} `json:"review"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrDecode, err)
	}
	if payload.Review == nil || payload.Review.Reviews == nil {
		return nil, fmt.Errorf("%w: no review.reviews array", scraper.ErrDecode)
	}

	records := make([]models.ReviewRecord, 0, len(payload.Review.Reviews))
	for i, obj := range payload.Review.Reviews {
		rec, err := decodeReview(obj)
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeReview(obj object) (models.ReviewRecord, error) {
	var (
		rec models.ReviewRecord
		err error
	)
	if rec.User, err = scalarField(obj, "authorId"); err != nil {
		return rec, err
	}
	if rec.Rating, err = scalarField(obj, "rating"); err != nil {
		return rec, err
	}
	rec.Header = missingTitle
	if _, ok := obj["title"]; ok {
		title, err := field[*string](obj, "title")
		if err != nil {
			return rec, err
		}
		if title != nil {
			rec.Header = *title
		}
	}
	if rec.Body, err = field[string](obj, "reviewText"); err != nil {
		return rec, err
	}
	if rec.Feedback.Helpful, err = field[int](obj, "totalPositiveFeedbackCount"); err != nil {
		return rec, err
	}
	if rec.Feedback.Unhelpful, err = field[int](obj, "totalNegativeFeedbackCount"); err != nil {
		return rec, err
	}

	photos, err := field[[]json.RawMessage](obj, "photos")
	if err != nil {
		return rec, err
	}
	rec.Images = models.JSONStringSlice{}
	for _, p := range photos {
		u, err := photoURL(p)
		if err != nil {
			return rec, err
		}
		rec.Images = append(rec.Images, u)
	}
	return rec, nil
}

// photoURL accepts a bare URL string or a photo object carrying one.
func photoURL(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var photo struct {
		NormalURL    string `json:"normalUrl"`
		URL          string `json:"url"`
		ThumbnailURL string `json:"thumbnailUrl"`
	}
	if err := json.Unmarshal(raw, &photo); err != nil {
		return "", fmt.Errorf("%w: photo: %v", scraper.ErrDecode, err)
	}
	for _, u := range []string{photo.NormalURL, photo.URL, photo.ThumbnailURL} {
		if u != "" {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: photo without url", scraper.ErrDecode)
}
