package app

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScraper/internal/database"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/fetcher/fetchertest"
	"ReviewScraper/internal/models"
	"ReviewScraper/pkg/config"
)

const (
	testBase = "https://shop.test"
	testAPI  = "https://api.test/product"
)

func productJSON(name string, reviews int) string {
	return `{"meta":{"analytics":{"data":{
	  "t_category_name":["Coats"],"product_name":["` + name + `"],"product_brand":["Brand"],
	  "product_original_price":["100"],"product_price":["80"],
	  "product_rating":["4"],"product_reviews":["` + itoa(reviews) + `"]}}},
	 "product":[{"detail":{"description":"d","seoKeywords":["k"]},"imagery":{"images":[]}}]}`
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func newTestApp(t *testing.T, f fetcher.Fetcher) *App {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Scraper.Workers = "2"
	cfg.Macys.BaseURL = testBase
	cfg.Macys.APIURL = testAPI
	cfg.Macys.InputPath = filepath.Join(dir, "macys_in.txt")
	cfg.Macys.ListingPath = filepath.Join(dir, "listings.txt")
	cfg.Macys.OutputJSONPath = filepath.Join(dir, "macys_out.json")

	repo, err := database.InitDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return &App{Config: cfg, Repo: repo, Fetcher: f, Headers: fetcher.DefaultHeaders("agent")}
}

func writeLines(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRunMacys(t *testing.T) {
	f := fetchertest.New().
		Page(testAPI+"/1", productJSON("Coat", 2)).
		Page(testAPI+"/2", productJSON("Scarf", 0))
	// product 3 has no API response and fails

	a := newTestApp(t, f)
	writeLines(t, a.Config.Macys.InputPath,
		"/shop/product/coat?ID=1\n"+testBase+"/shop/product/scarf?ID=2\n/shop/product/hat?ID=3\n/shop/product/coat?ID=1\n")

	require.NoError(t, a.Run(context.Background(), "macys"))

	data, err := os.ReadFile(a.Config.Macys.OutputJSONPath)
	require.NoError(t, err)
	var out []models.Product
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Coat", out[0].Title, "output keeps input order")
	assert.Equal(t, testBase+"/shop/product/coat?ID=1", out[0].ProductURL)
	assert.Equal(t, "Scarf", out[1].Title)

	count, err := a.Repo.CountProducts(context.Background(), models.ProductFilters{SourceSite: "macys"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunMacysLimit(t *testing.T) {
	f := fetchertest.New().
		Page(testAPI+"/1", productJSON("Coat", 0)).
		Page(testAPI+"/2", productJSON("Scarf", 0))

	a := newTestApp(t, f)
	a.Config.Macys.Limit = 1
	writeLines(t, a.Config.Macys.InputPath, "/p?ID=1\n/p?ID=2\n")

	require.NoError(t, a.RunMacys(context.Background()))
	assert.Equal(t, []string{testAPI + "/1"}, f.Requests())
}

func TestRunFailsWhenNothingScraped(t *testing.T) {
	a := newTestApp(t, fetchertest.New())
	writeLines(t, a.Config.Macys.InputPath, "/p?ID=1\n")

	assert.Error(t, a.RunMacys(context.Background()))
}

func TestCollectURLs(t *testing.T) {
	listing := func(hrefs ...string) string {
		body := "<html><body>"
		for _, h := range hrefs {
			body += `<a class="productDescLink" href="` + h + `">x</a>`
		}
		return body + "</body></html>"
	}
	f := fetchertest.New().
		Page(testBase+"/shop/coats", listing("/shop/product/a?ID=1", "/shop/product/b?ID=2")).
		Page(testBase+"/shop/hats", listing("/shop/product/b?ID=2", "/shop/product/c?ID=3"))

	a := newTestApp(t, f)
	writeLines(t, a.Config.Macys.ListingPath, testBase+"/shop/coats"+testBase+"/shop/hats\n"+testBase+"/shop/broken\n")

	require.NoError(t, a.CollectURLs(context.Background()))

	data, err := os.ReadFile(a.Config.Macys.InputPath)
	require.NoError(t, err)
	assert.Equal(t,
		testBase+"/shop/product/a?ID=1\n"+testBase+"/shop/product/b?ID=2\n"+testBase+"/shop/product/c?ID=3\n",
		string(data))
}

func TestRunUnknownTask(t *testing.T) {
	a := newTestApp(t, fetchertest.New())
	assert.Error(t, a.Run(context.Background(), "translate"))
}

func TestRunMacysReadsInputLinesWhole(t *testing.T) {
	f := fetchertest.New().Page(testAPI+"/5", productJSON("Boot", 0))

	a := newTestApp(t, f)
	productURL := testBase + "/shop/product/boot?ID=5&ref=https%3A%2F%2Fsearch.test"
	writeLines(t, a.Config.Macys.InputPath, productURL+"\n")

	require.NoError(t, a.RunMacys(context.Background()))

	data, err := os.ReadFile(a.Config.Macys.OutputJSONPath)
	require.NoError(t, err)
	var out []models.Product
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, productURL, out[0].ProductURL)
	assert.Equal(t, []string{testAPI + "/5"}, f.Requests())
}

// orderedScraper finishes "first" only after "second" has finished.
type orderedScraper struct {
	secondDone chan struct{}
}

func (s *orderedScraper) Site() string { return "test" }

func (s *orderedScraper) ScrapeProduct(ctx context.Context, url string) (models.Product, error) {
	switch url {
	case "first":
		select {
		case <-s.secondDone:
		case <-ctx.Done():
			return models.Product{}, ctx.Err()
		}
	case "second":
		defer close(s.secondDone)
	}
	return models.Product{SourceSite: "test", ProductURL: url, ScrapedAt: time.Now()}, nil
}

func TestRunSiteWritesLinesInInputOrder(t *testing.T) {
	a := newTestApp(t, fetchertest.New())
	linesPath := filepath.Join(t.TempDir(), "scraped.txt")
	jsonPath := filepath.Join(t.TempDir(), "scraped.json")

	s := &orderedScraper{secondDone: make(chan struct{})}
	require.NoError(t, a.runSite(context.Background(), s, []string{"first", "second"}, linesPath, jsonPath))

	f, err := os.Open(linesPath)
	require.NoError(t, err)
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var p models.Product
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &p))
		urls = append(urls, p.ProductURL)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"first", "second"}, urls)
}
