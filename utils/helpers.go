package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// UniqueStrings returns slice without repeated entries, keeping the first
// occurrence of each in its original position.
func UniqueStrings(slice []string) []string {
	keys := make(map[string]bool)
	uniqueSlice := []string{}
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			uniqueSlice = append(uniqueSlice, entry)
		}
	}
	return uniqueSlice
}

// ReadURLList reads one URL per line from path, trimming each line and
// skipping blank lines and duplicates.
func ReadURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list %s: %w", path, err)
	}
	return UniqueStrings(urls), nil
}

const urlScheme = "https://"

// SplitGluedURLs splits "https://a...https://b..." into its URLs. Only a
// full "https://" starts a new URL, so an encoded "https%3A" inside a query
// stays part of its URL.
func SplitGluedURLs(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var urls []string
	for {
		next := strings.Index(line[1:], urlScheme)
		if next < 0 {
			break
		}
		urls = append(urls, line[:next+1])
		line = line[next+1:]
	}
	return append(urls, line)
}
