package macys

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ReviewScraper/internal/models"
	"ReviewScraper/internal/scraper"
)

// ProductID returns the ID query value of a product URL.
func ProductID(productURL string) (string, error) {
	parts := strings.SplitN(productURL, "ID=", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: no ID in %s", scraper.ErrParse, productURL)
	}
	id := strings.SplitN(parts[1], "&", 2)[0]
	if id == "" {
		return "", fmt.Errorf("%w: empty ID in %s", scraper.ErrParse, productURL)
	}
	return id, nil
}

// ProductURL is the product API address of productID.
func ProductURL(apiURL, productID string) string {
	return apiURL + "/" + productID
}

type productPayload struct {
	Meta *struct {
		Analytics *struct {
			Data map[string][]json.RawMessage `json:"data"`
		} `json:"analytics"`
	} `json:"meta"`
	Product []struct {
		Detail *struct {
			Description *string         `json:"description"`
			BulletText  json.RawMessage `json:"bulletText"`
			SEOKeywords json.RawMessage `json:"seoKeywords"`
		} `json:"detail"`
		Imagery *struct {
			Images []struct {
				FilePath *string `json:"filePath"`
			} `json:"images"`
		} `json:"imagery"`
	} `json:"product"`
}

// DecodeProduct reads the product API response. Analytics values are
// single-element arrays; only their first element is used.
func DecodeProduct(raw []byte, imageBaseURL string) (models.Product, error) {
	var payload productPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.Product{}, fmt.Errorf("%w: %v", scraper.ErrDecode, err)
	}
	if payload.Meta == nil || payload.Meta.Analytics == nil || payload.Meta.Analytics.Data == nil {
		return models.Product{}, missing("meta.analytics.data")
	}
	if len(payload.Product) == 0 {
		return models.Product{}, missing("product")
	}
	meta := payload.Meta.Analytics.Data
	prod := payload.Product[0]

	first := func(key string) (string, error) {
		values, ok := meta[key]
		if !ok || len(values) == 0 {
			return "", missing(key)
		}
		s, err := scalar(values[0])
		if err != nil {
			return "", fmt.Errorf("%w: key %q: %v", scraper.ErrDecode, key, err)
		}
		return s, nil
	}

	var (
		p   models.Product
		err error
	)
	if p.Category, err = first("t_category_name"); err != nil {
		return p, err
	}
	if p.Title, err = first("product_name"); err != nil {
		return p, err
	}
	if p.Brand, err = first("product_brand"); err != nil {
		return p, err
	}
	if p.OriginalPrice, err = first("product_original_price"); err != nil {
		return p, err
	}
	if p.CurrentPrice, err = first("product_price"); err != nil {
		return p, err
	}

	rating, err := first("product_rating")
	if err != nil {
		return p, err
	}
	if p.Rating, err = strconv.ParseFloat(strings.TrimSpace(rating), 64); err != nil {
		return p, fmt.Errorf("%w: product_rating %q", scraper.ErrDecode, rating)
	}

	reviews, err := first("product_reviews")
	if err != nil {
		return p, err
	}
	if p.NumReviews, err = strconv.Atoi(strings.TrimSpace(reviews)); err != nil {
		return p, fmt.Errorf("%w: product_reviews %q", scraper.ErrDecode, reviews)
	}

	if prod.Detail == nil {
		return p, missing("product.detail")
	}
	if prod.Detail.Description == nil {
		return p, missing("detail.description")
	}
	p.Description.Paragraph = *prod.Detail.Description
	if len(prod.Detail.BulletText) > 0 {
		if p.Description.Bullets, err = stringList(prod.Detail.BulletText); err != nil {
			return p, err
		}
	}
	if len(prod.Detail.SEOKeywords) == 0 {
		return p, missing("detail.seoKeywords")
	}
	keywords, err := stringList(prod.Detail.SEOKeywords)
	if err != nil {
		return p, err
	}
	p.Keywords = keywords

	if prod.Imagery == nil {
		return p, missing("product.imagery")
	}
	p.Thumbnails = models.JSONStringSlice{}
	for _, img := range prod.Imagery.Images {
		if img.FilePath == nil {
			return p, missing("imagery.images.filePath")
		}
		p.Thumbnails = append(p.Thumbnails, imageBaseURL+*img.FilePath)
	}
	return p, nil
}
