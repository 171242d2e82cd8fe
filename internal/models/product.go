package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Product holds everything extracted for a single product page.
// Site pipelines fill only the fields their pages carry.
type Product struct {
	ID              int64           `json:"-" db:"id"`
	SourceSite      string          `json:"source_site" db:"source_site"`
	ProductURL      string          `json:"url" db:"product_url"`
	ProductID       string          `json:"product_id,omitempty" db:"product_id"`
	Title           string          `json:"product_name" db:"title"`
	Brand           string          `json:"brand" db:"brand"`
	Category        string          `json:"category,omitempty" db:"category"`
	OriginalPrice   string          `json:"original_price,omitempty" db:"original_price"`
	CurrentPrice    string          `json:"current_price,omitempty" db:"current_price"`
	SalePrice       float64         `json:"price" db:"sale_price"`
	Rating          float64         `json:"product_rating,omitempty" db:"rating"`
	NumReviews      int             `json:"number_reviews,omitempty" db:"num_reviews"`
	Description     Description     `json:"description" db:"description"`
	Keywords        JSONStringSlice `json:"product_keywords,omitempty" db:"keywords"`
	Thumbnails      JSONStringSlice `json:"thumbnails" db:"thumbnails"`
	RelatedProducts JSONStringSlice `json:"related_products,omitempty" db:"related_products"`
	Reviews         []ReviewRecord  `json:"reviews" db:"-"`
	ScrapedAt       time.Time       `json:"scraped_at" db:"scraped_at"`
}

// Feature is one header / text row of a product overview.
type Feature struct {
	Header      string `json:"header"`
	Description string `json:"description"`
}

// Description is the free text of a product plus any bullets or feature rows.
type Description struct {
	Paragraph string    `json:"paragraph"`
	Bullets   []string  `json:"bullets,omitempty"`
	Features  []Feature `json:"features,omitempty"`
}

// Value stores the description as JSON text.
func (d Description) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a description written by Value.
func (d *Description) Scan(value interface{}) error {
	if value == nil {
		*d = Description{}
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, d)
}

// JSONStringSlice is a custom type to handle JSON serialization/deserialization for []string
type JSONStringSlice []string

// Value implements the driver.Valuer interface to convert []string to JSON for database storage
func (j JSONStringSlice) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(j))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface to convert JSON from database to []string
func (j *JSONStringSlice) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, j)
}

// MarshalJSON always emits an array, never null.
func (j JSONStringSlice) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(j))
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported type for JSON column")
	}
}

// ProductFilters holds the query parameters for listing stored products.
type ProductFilters struct {
	SourceSite string
	Brand      string
	// For Pagination
	Limit  int
	Offset int
}

// Pagination describes a page of listed products.
type Pagination struct {
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// ProductsResponse is the body of the product listing endpoint.
type ProductsResponse struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
