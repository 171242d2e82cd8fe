package bestbuy

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/models"
	"ReviewScraper/internal/scraper"
)

const (
	overviewSectionSelector = `div[class^="embedded-component-container lv product-"]`
	featureRowSelector      = `div[class="list-row"]`
)

// ExtractOverview reads the description text and the feature rows of a product page.
// The description lives in the first overview section, or else in the second.
func ExtractOverview(doc *goquery.Document) (models.Description, error) {
	sections := doc.Find(overviewSectionSelector)

	var (
		desc string
		err  error = fmt.Errorf("%w: no overview sections", scraper.ErrParse)
	)
	for i := 0; i < sections.Length() && i < 2; i++ {
		if desc, err = overviewDescription(dom.TextContent(sections.Get(i))); err == nil {
			break
		}
	}
	if err != nil {
		return models.Description{}, err
	}

	features := []models.Feature{}
	doc.Find(featureRowSelector).Each(func(_ int, row *goquery.Selection) {
		h4 := row.ChildrenFiltered("h4")
		p := row.ChildrenFiltered("p")
		if h4.Length() == 0 || p.Length() == 0 {
			log.Warn().Msg("overview row without header or text")
			return
		}
		features = append(features, models.Feature{
			Header:      dom.OwnText(h4.Get(0)),
			Description: dom.OwnText(p.Get(0)),
		})
	})

	return models.Description{Paragraph: desc, Features: features}, nil
}

// overviewDescription cuts the inline script off a section's text and keeps
// what follows the "Description" label.
func overviewDescription(text string) (string, error) {
	text = strings.SplitN(text, "(function", 2)[0]
	parts := strings.Split(text, "Description")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: no description label", scraper.ErrParse)
	}
	return parts[1], nil
}
