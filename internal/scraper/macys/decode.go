package macys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ReviewScraper/internal/scraper"
)

type object = map[string]json.RawMessage

func missing(key string) error {
	return fmt.Errorf("%w: missing key %q", scraper.ErrDecode, key)
}

// field decodes obj[key] into T. An absent key is an error.
func field[T any](obj object, key string) (T, error) {
	var v T
	raw, ok := obj[key]
	if !ok {
		return v, missing(key)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: key %q: %v", scraper.ErrDecode, key, err)
	}
	return v, nil
}

// scalar renders a JSON string or number as text.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("not a string or number: %s", raw)
	}
	return n.String(), nil
}

func scalarField(obj object, key string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", missing(key)
	}
	s, err := scalar(raw)
	if err != nil {
		return "", fmt.Errorf("%w: key %q: %v", scraper.ErrDecode, key, err)
	}
	return s, nil
}

// stringList accepts either a single string or an array of strings.
func stringList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: want string or string array, got %s", scraper.ErrDecode, strings.TrimSpace(string(raw)))
	}
	return []string{s}, nil
}
