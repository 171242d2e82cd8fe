package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// priceRegex finds the first price-like number in a string.
// It handles integers (1,079), decimals (119.00) and thousands commas.
var priceRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePrice reads the first number out of strings like "$1,129.99" or
// "Sale $24.50". ok is false when no number can be read.
func ParsePrice(priceStr string) (price float64, ok bool) {
	foundPrice := priceRegex.FindString(priceStr)
	if foundPrice == "" {
		return 0, false
	}

	cleanedStr := strings.ReplaceAll(foundPrice, ",", "")
	price, err := strconv.ParseFloat(cleanedStr, 64)
	if err != nil {
		log.Debug().Err(err).Str("input", priceStr).Msg("unparsable price")
		return 0, false
	}
	return price, true
}
