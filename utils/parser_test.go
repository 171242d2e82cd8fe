package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"Standard Price", "$1,079.00", 1079.00, true},
		{"Price with Comma", "$2,550.50", 2550.50, true},
		{"Price without Comma", "$350.75", 350.75, true},
		{"Integer Price", "99", 99.0, true},
		{"Prefixed", "Sale $24.50", 24.50, true},
		{"Empty String", "", 0.0, false},
		{"Invalid String", "No Price", 0.0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := ParsePrice(tc.input)
			if ok != tc.ok || result != tc.expected {
				t.Errorf("ParsePrice(%q) = %f, %v; want %f, %v", tc.input, result, ok, tc.expected, tc.ok)
			}
		})
	}
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, UniqueStrings([]string{"b", "a", "b", "c", "a"}))
	assert.Equal(t, []string{}, UniqueStrings(nil))
}

func TestSplitGluedURLs(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Single", "https://a.test/1", []string{"https://a.test/1"}},
		{"Glued", "https://a.test/1https://a.test/2", []string{"https://a.test/1", "https://a.test/2"}},
		{"Padded", "  https://a.test/1 \t", []string{"https://a.test/1"}},
		{"Blank", "   ", nil},
		{"Relative", "/shop/product/a?ID=1", []string{"/shop/product/a?ID=1"}},
		{"Encoded https in query", "https://www.bestbuy.com/site/x.p?skuId=1&ref=https%3A%2F%2Fa",
			[]string{"https://www.bestbuy.com/site/x.p?skuId=1&ref=https%3A%2F%2Fa"}},
		{"Glued after encoded https", "https://a.test/1?ref=https%3A%2F%2Fbhttps://a.test/2",
			[]string{"https://a.test/1?ref=https%3A%2F%2Fb", "https://a.test/2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitGluedURLs(tc.input))
		})
	}
}

func TestReadURLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	body := "https://a.test/1\n\n  https://a.test/2?ref=https%3A%2F%2Fx  \nhttps://a.test/3https://a.test/4\nhttps://a.test/1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	urls, err := ReadURLList(path)
	require.NoError(t, err)
	// lines are taken as they are; only listing collection splits glued URLs
	assert.Equal(t, []string{
		"https://a.test/1",
		"https://a.test/2?ref=https%3A%2F%2Fx",
		"https://a.test/3https://a.test/4",
	}, urls)

	_, err = ReadURLList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
