package bestbuy

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/scraper"
)

// ProductInfo is the brand and name block at the top of a product page.
type ProductInfo struct {
	Company     string
	ProductName string
}

// ExtractProductInfo reads the company link and the sku title.
func ExtractProductInfo(doc *goquery.Document) (ProductInfo, error) {
	title := doc.Find(`div[id^="shop-product-title"]`).First()
	if title.Length() == 0 {
		return ProductInfo{}, fmt.Errorf("%w: no product title block", scraper.ErrParse)
	}

	company := title.Find("div").First().Find("a").First()
	if company.Length() == 0 {
		return ProductInfo{}, fmt.Errorf("%w: no company link", scraper.ErrParse)
	}
	name := title.Find(".sku-title").First()
	if name.Length() == 0 {
		return ProductInfo{}, fmt.Errorf("%w: no sku title", scraper.ErrParse)
	}

	return ProductInfo{
		Company:     strings.TrimSpace(dom.OwnText(company.Nodes[0])),
		ProductName: strings.TrimSpace(dom.TextContent(name.Nodes[0])),
	}, nil
}
