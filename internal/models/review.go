package models

// Recommendation is the reviewer's "would recommend" answer.
// The JSON review API does not carry it, so it stays empty there.
type Recommendation string

const (
	RecommendYes Recommendation = "Yes"
	RecommendNo  Recommendation = "No"
)

// Feedback holds the helpful / unhelpful vote counts of a review.
type Feedback struct {
	Helpful   int `json:"number_helpful"`
	Unhelpful int `json:"number_unhelpful"`
}

// ReviewRecord is one user review.
type ReviewRecord struct {
	User           string          `json:"user"`
	Header         string          `json:"header"`
	Rating         string          `json:"rating"`
	Recommendation Recommendation  `json:"recommendation,omitempty"`
	Feedback       Feedback        `json:"feedback"`
	Body           string          `json:"body"`
	Images         JSONStringSlice `json:"product_images"`
}

// ProductReviewSet is every review collected for one product URL,
// in page order and then in on-page order.
type ProductReviewSet struct {
	SourceURL string         `json:"url"`
	Reviews   []ReviewRecord `json:"reviews"`
}

// PaginationPlan lists the requests needed to walk a product's reviews.
// HTML sites are walked by PageURLs, the JSON API by Offsets.
type PaginationPlan struct {
	TotalItems int
	PageSize   int
	PageURLs   []string
	Offsets    []int
}
