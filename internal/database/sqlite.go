package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"ReviewScraper/internal/models"
)

// ErrProductNotFound is returned when no stored product has the requested URL.
var ErrProductNotFound = errors.New("product not found")

// timeLayout is fixed width so scraped_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DBRepository is a thin layer over the sqlite connection.
type DBRepository struct {
	DB *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	"source_site" TEXT NOT NULL,
	"product_url" TEXT NOT NULL UNIQUE,
	"product_id" TEXT,
	"title" TEXT,
	"brand" TEXT,
	"category" TEXT,
	"original_price" TEXT,
	"current_price" TEXT,
	"sale_price" REAL,
	"rating" REAL,
	"num_reviews" INTEGER,
	"description" TEXT,
	"keywords" TEXT,
	"thumbnails" TEXT,
	"related_products" TEXT,
	"scraped_at" TEXT
);
CREATE TABLE IF NOT EXISTS reviews (
	"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	"product_id" INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	"position" INTEGER NOT NULL,
	"user" TEXT,
	"header" TEXT,
	"rating" TEXT,
	"recommendation" TEXT,
	"helpful" INTEGER,
	"unhelpful" INTEGER,
	"body" TEXT,
	"images" TEXT
);
CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id, position);`

// InitDB opens the database at filepath and creates the tables if needed.
func InitDB(filepath string) (*DBRepository, error) {
	db, err := sql.Open("sqlite", filepath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", filepath, err)
	}
	// sqlite allows a single writer; product workers share one connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", filepath, err)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	log.Debug().Str("path", filepath).Msg("database initialized")
	return &DBRepository{DB: db}, nil
}

func (repo *DBRepository) Close() error {
	return repo.DB.Close()
}

// SaveProduct inserts or updates a product by URL and replaces its reviews,
// all in one transaction. It returns the product row id.
func (repo *DBRepository) SaveProduct(ctx context.Context, product models.Product) (int64, error) {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	scrapedAt := product.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	query := `
	INSERT INTO products (
		source_site, product_url, product_id, title, brand, category,
		original_price, current_price, sale_price, rating, num_reviews,
		description, keywords, thumbnails, related_products, scraped_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(product_url) DO UPDATE SET
		source_site=excluded.source_site,
		product_id=excluded.product_id,
		title=excluded.title,
		brand=excluded.brand,
		category=excluded.category,
		original_price=excluded.original_price,
		current_price=excluded.current_price,
		sale_price=excluded.sale_price,
		rating=excluded.rating,
		num_reviews=excluded.num_reviews,
		description=excluded.description,
		keywords=excluded.keywords,
		thumbnails=excluded.thumbnails,
		related_products=excluded.related_products,
		scraped_at=excluded.scraped_at
	RETURNING id;`

	var id int64
	err = tx.QueryRowContext(ctx, query,
		product.SourceSite, product.ProductURL, product.ProductID, product.Title, product.Brand, product.Category,
		product.OriginalPrice, product.CurrentPrice, product.SalePrice, product.Rating, product.NumReviews,
		product.Description, product.Keywords, product.Thumbnails, product.RelatedProducts,
		scrapedAt.UTC().Format(timeLayout),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save product %s: %w", product.ProductURL, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE product_id = ?", id); err != nil {
		return 0, fmt.Errorf("clear reviews of %s: %w", product.ProductURL, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO reviews (product_id, position, user, header, rating, recommendation, helpful, unhelpful, body, images)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range product.Reviews {
		_, err := stmt.ExecContext(ctx, id, i, r.User, r.Header, r.Rating, string(r.Recommendation),
			r.Feedback.Helpful, r.Feedback.Unhelpful, r.Body, r.Images)
		if err != nil {
			return 0, fmt.Errorf("save review %d of %s: %w", i, product.ProductURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Debug().Str("url", product.ProductURL).Int("reviews", len(product.Reviews)).Msg("product saved")
	return id, nil
}

func filterConditions(filters models.ProductFilters) (string, []interface{}) {
	var args []interface{}
	var conditions []string

	if filters.SourceSite != "" {
		conditions = append(conditions, "source_site = ?")
		args = append(args, filters.SourceSite)
	}
	if filters.Brand != "" {
		conditions = append(conditions, "brand = ?")
		args = append(args, filters.Brand)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetProducts lists stored products without their reviews, newest first.
func (repo *DBRepository) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	where, args := filterConditions(filters)
	query := `SELECT id, source_site, product_url, product_id, title, brand, category,
	                 original_price, current_price, sale_price, rating, num_reviews,
	                 description, keywords, thumbnails, related_products, scraped_at
	          FROM products` + where + " ORDER BY scraped_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	rows, err := repo.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute filtered query: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var (
			p         models.Product
			productID sql.NullString
			scrapedAt sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.SourceSite, &p.ProductURL, &productID, &p.Title, &p.Brand, &p.Category,
			&p.OriginalPrice, &p.CurrentPrice, &p.SalePrice, &p.Rating, &p.NumReviews,
			&p.Description, &p.Keywords, &p.Thumbnails, &p.RelatedProducts, &scrapedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		p.ProductID = productID.String
		if scrapedAt.Valid {
			if t, err := time.Parse(timeLayout, scrapedAt.String); err == nil {
				p.ScrapedAt = t
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the number of products matching filters, ignoring paging.
func (repo *DBRepository) CountProducts(ctx context.Context, filters models.ProductFilters) (int, error) {
	where, args := filterConditions(filters)
	var count int
	err := repo.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&count)
	return count, err
}

// GetReviews returns the stored review set of productURL in scrape order.
func (repo *DBRepository) GetReviews(ctx context.Context, productURL string) (models.ProductReviewSet, error) {
	set := models.ProductReviewSet{SourceURL: productURL, Reviews: []models.ReviewRecord{}}

	var id int64
	err := repo.DB.QueryRowContext(ctx, "SELECT id FROM products WHERE product_url = ?", productURL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return set, fmt.Errorf("%w: %s", ErrProductNotFound, productURL)
	}
	if err != nil {
		return set, err
	}

	rows, err := repo.DB.QueryContext(ctx, `
		SELECT user, header, rating, recommendation, helpful, unhelpful, body, images
		FROM reviews WHERE product_id = ? ORDER BY position`, id)
	if err != nil {
		return set, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r   models.ReviewRecord
			rec string
		)
		if err := rows.Scan(&r.User, &r.Header, &r.Rating, &rec, &r.Feedback.Helpful, &r.Feedback.Unhelpful, &r.Body, &r.Images); err != nil {
			return set, fmt.Errorf("scan review row: %w", err)
		}
		r.Recommendation = models.Recommendation(rec)
		set.Reviews = append(set.Reviews, r)
	}
	return set, rows.Err()
}
