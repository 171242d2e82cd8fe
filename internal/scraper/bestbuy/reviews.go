package bestbuy

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"ReviewScraper/internal/dom"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/models"
	"ReviewScraper/internal/observability"
	"ReviewScraper/internal/scraper"
)

// The review listing serves a fixed 20 reviews per page.
const reviewPageSize = 20

const (
	summarySelector        = `span[class="message"]`
	headingSelector        = `div[class="review-heading"]`
	authorSelector         = `div[class^="ugc-author"]`
	recommendationSelector = `div[class*="ugc-recommendation"]`
	feedbackSelector       = `div[class="feedback-display"]`
	bodySelector           = `div[class="ugc-review-body"]`
	gallerySelector        = `ul[class="carousel gallery-preview"]`
	galleryImageSelector   = `li button img`

	ratingMarker = "stars"
)

var nonDigit = regexp.MustCompile(`\D`)

// ReviewsURL rewrites a product URL into the URL of its first review page.
func ReviewsURL(productURL string) string {
	u := strings.ReplaceAll(productURL, "site", "site/reviews")
	u = strings.ReplaceAll(u, ".p?", "?variant=A&")
	return u + "&page=1"
}

// NumPages is the number of review pages for total reviews.
// A multiple of the page size still gets a trailing (empty) page.
func NumPages(total int) int {
	return total/reviewPageSize + 1
}

// PageURLs swaps the trailing page digit of firstPage for 1..numPages.
func PageURLs(firstPage string, numPages int) []string {
	prefix := firstPage[:len(firstPage)-1]
	urls := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		urls = append(urls, prefix+strconv.Itoa(i))
	}
	return urls
}

// ParseReviewTotal reads Y out of a "X of Y reviews" summary.
func ParseReviewTotal(summary string) (int, error) {
	parts := strings.Split(summary, " of ")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: no total in summary %q", scraper.ErrParse, summary)
	}
	count := strings.SplitN(parts[1], "reviews", 2)[0]
	count = strings.TrimSpace(strings.ReplaceAll(count, ",", ""))
	total, err := strconv.Atoi(count)
	if err != nil {
		return 0, fmt.Errorf("%w: review total %q: %v", scraper.ErrParse, count, err)
	}
	return total, nil
}

// PlanPagination fetches the first review page of productURL and lists every page to walk.
func PlanPagination(ctx context.Context, f fetcher.Fetcher, productURL string, headers http.Header) (models.PaginationPlan, error) {
	firstPage := ReviewsURL(productURL)

	raw, err := f.Fetch(ctx, firstPage, headers)
	if err != nil {
		return models.PaginationPlan{}, err
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return models.PaginationPlan{}, fmt.Errorf("%w: %v", scraper.ErrParse, err)
	}

	summary := doc.Find(summarySelector)
	if summary.Length() == 0 {
		return models.PaginationPlan{}, fmt.Errorf("%w: no review summary on %s", scraper.ErrParse, firstPage)
	}
	total, err := ParseReviewTotal(dom.TextContent(summary.Nodes[0]))
	if err != nil {
		return models.PaginationPlan{}, err
	}

	return models.PaginationPlan{
		TotalItems: total,
		PageSize:   reviewPageSize,
		PageURLs:   PageURLs(firstPage, NumPages(total)),
	}, nil
}

// ScrapeReviews walks every review page of productURL. It never fails:
// a product whose review total cannot be read has no reviews, and a page
// that cannot be fetched or parsed contributes nothing.
func ScrapeReviews(ctx context.Context, f fetcher.Fetcher, productURL string, headers http.Header) models.ProductReviewSet {
	set := models.ProductReviewSet{SourceURL: productURL, Reviews: []models.ReviewRecord{}}

	plan, err := PlanPagination(ctx, f, productURL, headers)
	if err != nil {
		log.Warn().Err(err).Str("url", productURL).Msg("product has no reviews")
		return set
	}

	for _, pageURL := range plan.PageURLs {
		records, err := scrapeReviewPage(ctx, f, pageURL, headers)
		if err != nil {
			observability.ObservePageDropped(site)
			log.Warn().Err(err).Str("url", productURL).Str("page", pageURL).Msg("skipping review page")
			continue
		}
		set.Reviews = append(set.Reviews, records...)
	}

	observability.ObserveReviews(site, len(set.Reviews))
	log.Info().Str("url", productURL).Int("total", plan.TotalItems).Int("pages", len(plan.PageURLs)).
		Int("reviews", len(set.Reviews)).Msg("reviews scraped")
	return set
}

func scrapeReviewPage(ctx context.Context, f fetcher.Fetcher, pageURL string, headers http.Header) ([]models.ReviewRecord, error) {
	raw, err := f.Fetch(ctx, pageURL, headers)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrParse, err)
	}
	return ExtractReviewPage(doc)
}

// ExtractReviewPage pulls the parallel field lists out of one review page
// and assembles them into records.
func ExtractReviewPage(doc *goquery.Document) ([]models.ReviewRecord, error) {
	ratings, headers, err := extractHeadings(doc)
	if err != nil {
		return nil, err
	}

	helpful, unhelpful, err := extractFeedback(doc)
	if err != nil {
		log.Debug().Err(err).Msg("feedback extraction failed, page feedback dropped")
	}

	return assembleReviews(reviewFields{
		users:           extractUsers(doc),
		headers:         headers,
		ratings:         ratings,
		recommendations: extractRecommendations(doc),
		helpful:         helpful,
		unhelpful:       unhelpful,
		bodies:          dom.Texts(doc.Find(bodySelector)),
		images:          extractImages(doc, headers),
	}), nil
}

type reviewFields struct {
	users           []string
	headers         []string
	ratings         []string
	recommendations []models.Recommendation
	helpful         []int
	unhelpful       []int
	bodies          []string
	images          [][]string
}

// assembleReviews zips the field lists by index. Lists of unequal length
// are truncated to the shortest one.
func assembleReviews(f reviewFields) []models.ReviewRecord {
	n := scraper.MinLen(
		len(f.users), len(f.headers), len(f.ratings), len(f.recommendations),
		len(f.helpful), len(f.unhelpful), len(f.bodies), len(f.images),
	)

	records := make([]models.ReviewRecord, 0, n)
	for i := 0; i < n; i++ {
		images := models.JSONStringSlice(f.images[i])
		if images == nil {
			images = models.JSONStringSlice{}
		}
		records = append(records, models.ReviewRecord{
			User:           f.users[i],
			Header:         f.headers[i],
			Rating:         f.ratings[i],
			Recommendation: f.recommendations[i],
			Feedback: models.Feedback{
				Helpful:   f.helpful[i],
				Unhelpful: f.unhelpful[i],
			},
			Body:   f.bodies[i],
			Images: images,
		})
	}
	return records
}

// SplitHeading separates "<rating>stars<header>" at the first "stars".
// The rating keeps the marker, the header is the untouched remainder.
func SplitHeading(text string) (rating, header string, err error) {
	parts := strings.SplitN(text, ratingMarker, 2)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: no %q in review heading %q", scraper.ErrParse, ratingMarker, text)
	}
	return parts[0] + ratingMarker, parts[1], nil
}

func extractHeadings(doc *goquery.Document) (ratings, headers []string, err error) {
	for _, text := range dom.Texts(doc.Find(headingSelector)) {
		rating, header, err := SplitHeading(text)
		if err != nil {
			return nil, nil, err
		}
		ratings = append(ratings, rating)
		headers = append(headers, header)
	}
	return ratings, headers, nil
}

// extractUsers keeps every second author node; each author block renders two.
func extractUsers(doc *goquery.Document) []string {
	var users []string
	for i, text := range dom.Texts(doc.Find(authorSelector)) {
		if i%2 == 0 {
			users = append(users, text)
		}
	}
	return users
}

// ClassifyRecommendation reads "No..." as a refusal and anything else as a recommendation.
func ClassifyRecommendation(text string) models.Recommendation {
	if strings.HasPrefix(strings.TrimSpace(text), "No") {
		return models.RecommendNo
	}
	return models.RecommendYes
}

func extractRecommendations(doc *goquery.Document) []models.Recommendation {
	var out []models.Recommendation
	for _, text := range dom.Texts(doc.Find(recommendationSelector)) {
		out = append(out, ClassifyRecommendation(text))
	}
	return out
}

// ParseFeedback strips every non-digit and reads the first digit as the helpful
// count and the second as the unhelpful count. Counts of 10 or more are
// misread; "12 helpful 3 unhelpful" yields 1 and 2.
func ParseFeedback(text string) (helpful, unhelpful int, err error) {
	digits := nonDigit.ReplaceAllString(text, "")
	if len(digits) < 2 {
		return 0, 0, fmt.Errorf("%w: feedback %q has fewer than two digits", scraper.ErrParse, text)
	}
	return int(digits[0] - '0'), int(digits[1] - '0'), nil
}

// extractFeedback fails for the whole page when any element cannot be read.
func extractFeedback(doc *goquery.Document) (helpful, unhelpful []int, err error) {
	for _, text := range dom.Texts(doc.Find(feedbackSelector)) {
		h, u, err := ParseFeedback(text)
		if err != nil {
			return nil, nil, err
		}
		helpful = append(helpful, h)
		unhelpful = append(unhelpful, u)
	}
	return helpful, unhelpful, nil
}

// extractImages maps each gallery to the header of its review and returns the
// image lists aligned with headers. Headers without a gallery get no images.
// If any gallery cannot be read the result is nil, which leaves the page
// with no records once the field lists are zipped.
func extractImages(doc *goquery.Document, headers []string) [][]string {
	byHeader, err := galleriesByHeader(doc)
	if err != nil {
		log.Debug().Err(err).Msg("review images unreadable, page records dropped")
		return nil
	}

	images := make([][]string, len(headers))
	for i, header := range headers {
		images[i] = byHeader[header]
		if images[i] == nil {
			images[i] = []string{}
		}
	}
	return images
}

func galleriesByHeader(doc *goquery.Document) (map[string][]string, error) {
	byHeader := map[string][]string{}
	var err error

	doc.Find(gallerySelector).EachWithBreak(func(_ int, gallery *goquery.Selection) bool {
		heading := gallery.PrevAllFiltered(headingSelector).First()
		if heading.Length() == 0 {
			heading = gallery.Parent().ChildrenFiltered(headingSelector).First()
		}
		if heading.Length() == 0 {
			err = fmt.Errorf("%w: gallery without review heading", scraper.ErrParse)
			return false
		}

		var header string
		if _, header, err = SplitHeading(dom.TextContent(heading.Nodes[0])); err != nil {
			return false
		}

		links := []string{}
		gallery.Find(galleryImageSelector).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, ok := img.Attr("src")
			if !ok {
				err = fmt.Errorf("%w: gallery image without src", scraper.ErrParse)
				return false
			}
			links = append(links, src)
			return true
		})
		if err != nil {
			return false
		}

		byHeader[header] = links
		return true
	})

	if err != nil {
		return nil, err
	}
	return byHeader, nil
}
