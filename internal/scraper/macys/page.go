package macys

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/models"
	"ReviewScraper/utils"
)

const notAvailable = "N/A"

// noPrice marks a page without a readable sale price.
const noPrice = -1.0

// ExtractBrandAndTitle returns the brand and the title, each "N/A" when absent.
func ExtractBrandAndTitle(doc *goquery.Document) (brand, title string) {
	brand = dom.FirstText(doc, `a[data-auto*="product-brand"]`, notAvailable)
	title = dom.FirstText(doc, `div[class*="product-title"]`, notAvailable)
	return brand, title
}

// ExtractDescription returns the description paragraph ("N/A" when absent)
// and the bullet list.
func ExtractDescription(doc *goquery.Document) models.Description {
	desc := models.Description{
		Paragraph: dom.FirstText(doc, `p[itemprop*="description"]`, notAvailable),
	}
	bullets := doc.Find(`ul[data-auto*="product-description-bullets"]`).First()
	if bullets.Length() > 0 {
		for _, text := range dom.Texts(bullets.Find("li")) {
			desc.Bullets = append(desc.Bullets, strings.TrimSpace(text))
		}
	}
	return desc
}

// ExtractThumbnails returns the distinct main-picture image sources in page order.
// It stops at the first picture without an image.
func ExtractThumbnails(doc *goquery.Document) []string {
	var urls []string
	doc.Find(`picture[class*="main-picture"]`).EachWithBreak(func(_ int, pic *goquery.Selection) bool {
		src, ok := pic.Find("img").First().Attr("src")
		if !ok {
			return false
		}
		urls = append(urls, src)
		return true
	})
	return utils.UniqueStrings(urls)
}

// ExtractRelatedProducts returns absolute links to related products, or none
// if any thumbnail lacks a link.
func ExtractRelatedProducts(doc *goquery.Document, baseURL string) []string {
	related := []string{}
	ok := true
	doc.Find(`div[class*="productThumbnail"]`).EachWithBreak(func(_ int, thumb *goquery.Selection) bool {
		href, found := thumb.Children().First().Attr("href")
		if !found {
			ok = false
			return false
		}
		related = append(related, baseURL+href)
		return true
	})
	if !ok {
		return []string{}
	}
	return related
}

// ExtractPrice reads the lowest sale price, or -1 when there is none.
func ExtractPrice(doc *goquery.Document) float64 {
	sale := doc.Find(`div[class*="lowest-sale-price"]`).First()
	if sale.Length() == 0 {
		return noPrice
	}
	child := sale.Children().First()
	if child.Length() == 0 {
		return noPrice
	}
	price, ok := utils.ParsePrice(dom.TextContent(child.Get(0)))
	if !ok {
		return noPrice
	}
	return price
}

// ExtractProductPage reads every field the product HTML page carries.
func ExtractProductPage(doc *goquery.Document, baseURL string) models.Product {
	brand, title := ExtractBrandAndTitle(doc)
	return models.Product{
		Title:           title,
		Brand:           brand,
		SalePrice:       ExtractPrice(doc),
		Description:     ExtractDescription(doc),
		Thumbnails:      ExtractThumbnails(doc),
		RelatedProducts: ExtractRelatedProducts(doc, baseURL),
		Reviews:         []models.ReviewRecord{},
	}
}
