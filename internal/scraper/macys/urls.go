package macys

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/scraper"
	"ReviewScraper/utils"
)

// ExtractProductLinks returns the distinct product hrefs of a category listing page.
func ExtractProductLinks(doc *goquery.Document) ([]string, error) {
	var links []string
	var err error
	doc.Find(`a[class^="productDescLink"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			err = fmt.Errorf("%w: product link without href", scraper.ErrParse)
			return false
		}
		links = append(links, href)
		return true
	})
	if err != nil {
		return nil, err
	}
	return utils.UniqueStrings(links), nil
}

// CollectProductURLs fetches a listing page and returns its product hrefs.
func CollectProductURLs(ctx context.Context, f fetcher.Fetcher, pageURL string, headers http.Header) ([]string, error) {
	raw, err := f.Fetch(ctx, pageURL, headers)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrParse, err)
	}
	return ExtractProductLinks(doc)
}
