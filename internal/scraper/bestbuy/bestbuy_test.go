package bestbuy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/fetcher/fetchertest"
	"ReviewScraper/internal/models"
	"ReviewScraper/internal/scraper"
	"ReviewScraper/pkg/config"
)

const testImageBase = "https://img.test/products/"

const productPage = `<html><body>
<div id="shop-product-title-52e0ad8a"><div><a href="/site/brands/lg">LG</a></div>
  <h1 class="sku-title">LG 65" Class OLED evo C3</h1></div>
<div class="embedded-component-container lv product-overview">Overview
  Description Self-lit pixels for perfect black.(function(){var x=1;})()</div>
<div class="embedded-component-container lv product-features">
  <div class="list-row"><h4>Dolby Vision</h4><p>Cinematic HDR.</p></div>
  <div class="list-row"><h4>No text here</h4></div>
  <div class="list-row"><h4>webOS</h4><p>Smart apps built in.</p></div>
</div>
</body></html>`

func newTestScraper(f fetcher.Fetcher) *BestBuyScraper {
	return New(f, fetcher.DefaultHeaders("agent"), config.BestBuyConfig{ImageBaseURL: testImageBase})
}

func TestSKU(t *testing.T) {
	assert.Equal(t, "6501234", SKU(testProductURL))
	assert.Equal(t, "no-sku-here", SKU("no-sku-here"))
}

func TestExtractProductInfo(t *testing.T) {
	doc, err := dom.Parse([]byte(productPage))
	require.NoError(t, err)

	info, err := ExtractProductInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, "LG", info.Company)
	assert.Equal(t, `LG 65" Class OLED evo C3`, info.ProductName)

	doc, err = dom.Parse([]byte(`<html><body><h1>nothing</h1></body></html>`))
	require.NoError(t, err)
	_, err = ExtractProductInfo(doc)
	assert.True(t, errors.Is(err, scraper.ErrParse))
}

func TestExtractOverview(t *testing.T) {
	doc, err := dom.Parse([]byte(productPage))
	require.NoError(t, err)

	overview, err := ExtractOverview(doc)
	require.NoError(t, err)
	assert.Equal(t, " Self-lit pixels for perfect black.", overview.Paragraph)
	assert.Equal(t, []models.Feature{
		{Header: "Dolby Vision", Description: "Cinematic HDR."},
		{Header: "webOS", Description: "Smart apps built in."},
	}, overview.Features)
}

func TestExtractOverview_FallsBackToSecondSection(t *testing.T) {
	doc, err := dom.Parse([]byte(`<html><body>
<div class="embedded-component-container lv product-a">Specs only</div>
<div class="embedded-component-container lv product-b">Description Second one</div>
</body></html>`))
	require.NoError(t, err)

	overview, err := ExtractOverview(doc)
	require.NoError(t, err)
	assert.Equal(t, " Second one", overview.Paragraph)
	assert.Empty(t, overview.Features)
}

func TestScrapeThumbnails(t *testing.T) {
	prefix := testImageBase + "6501/6501234"
	png := "\x89PNG placeholder"

	f := fetchertest.New().
		Page(prefix+"_s"+thumbnailEndpoint, "jpeg").
		Page(prefix+"_r"+thumbnailEndpoint, png).
		Page(prefix+"l"+thumbnailEndpoint, "jpeg").
		// _b is missing entirely: skipped
		Page(prefix+"cv11"+thumbnailEndpoint, "jpeg").
		Page(prefix+"cv12"+thumbnailEndpoint, "jpeg").
		Page(prefix+"cv13"+thumbnailEndpoint, png).
		Page(prefix+"cv14"+thumbnailEndpoint, "jpeg")

	got := newTestScraper(f).ScrapeThumbnails(context.Background(), testProductURL)
	assert.Equal(t, []string{
		prefix + "_s" + thumbnailEndpoint,
		prefix + "l" + thumbnailEndpoint,
		prefix + "cv11" + thumbnailEndpoint,
		prefix + "cv12" + thumbnailEndpoint,
	}, got)
}

func TestScrapeProduct(t *testing.T) {
	first := ReviewsURL(testProductURL)
	f := fetchertest.New().
		Page(testProductURL, productPage).
		Page(first, reviewPage("1-2 of 2 reviews", reviewA, reviewB))

	product, err := newTestScraper(f).ScrapeProduct(context.Background(), testProductURL)
	require.NoError(t, err)

	assert.Equal(t, "bestbuy", product.SourceSite)
	assert.Equal(t, "6501234", product.ProductID)
	assert.Equal(t, "LG", product.Brand)
	assert.Equal(t, `LG 65" Class OLED evo C3`, product.Title)
	assert.Empty(t, product.Thumbnails)
	assert.Len(t, product.Description.Features, 2)
	require.Len(t, product.Reviews, 2)
	assert.Equal(t, "alice", product.Reviews[0].User)
	assert.Equal(t, 2, product.NumReviews)
	assert.False(t, product.ScrapedAt.IsZero())
}

func TestScrapeProduct_PageFetchFailure(t *testing.T) {
	_, err := newTestScraper(fetchertest.New()).ScrapeProduct(context.Background(), testProductURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcher.ErrNetwork))
}
