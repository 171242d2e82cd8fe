// Package export writes scraped products to flat files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ReviewScraper/internal/models"
)

// LineWriter appends one JSON document per product to a text file.
// It is safe for concurrent use.
type LineWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenLines opens path for appending, creating it and its directory if needed.
func OpenLines(path string) (*LineWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &LineWriter{file: f, enc: enc}, nil
}

// Write appends p as a single line.
func (w *LineWriter) Write(p models.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(p); err != nil {
		return fmt.Errorf("write product %s: %w", p.ProductURL, err)
	}
	return nil
}

func (w *LineWriter) Close() error {
	return w.file.Close()
}

// WriteJSON replaces path with an indented JSON array of products.
func WriteJSON(path string, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(products, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteURLs writes one URL per line.
func WriteURLs(path string, urls []string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	for _, u := range urls {
		if _, err := fmt.Fprintln(f, u); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}
