package export

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScraper/internal/models"
)

func TestLineWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scraped.txt")

	w, err := OpenLines(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(models.Product{ProductURL: "https://a.test/1", Title: "One"}))
	require.NoError(t, w.Close())

	// reopening appends
	w, err = OpenLines(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(models.Product{ProductURL: "https://a.test/2", Title: "Two <b>"}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var p models.Product
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &p))
		titles = append(titles, p.Title)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"One", "Two <b>"}, titles)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped.json")

	products := []models.Product{{
		ProductURL: "https://a.test/1",
		Reviews: []models.ReviewRecord{{
			User: "alice", Recommendation: models.RecommendYes,
			Feedback: models.Feedback{Helpful: 2},
		}},
	}}
	require.NoError(t, WriteJSON(path, products))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.test/1", got[0]["url"])
	reviews := got[0]["reviews"].([]any)
	review := reviews[0].(map[string]any)
	assert.Equal(t, "alice", review["user"])
	assert.Equal(t, []any{}, review["product_images"], "nil images serialize as an empty list")

	require.NoError(t, WriteJSON(path, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestWriteURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, WriteURLs(path, []string{"https://a.test/1", "https://a.test/2"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.test/1\nhttps://a.test/2\n", string(data))
}
