package models

import (
	"regexp"
	"strconv"
	"strings"
)

var quantityPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(g|kg|ml|l)\b`)

// ParsePackageWeight extracts a gram weight from a free-text quantity string
// such as "250g", "1 kg" or "330ml". Millilitres and litres are treated as
// grams, which is close enough for the mostly-liquid products that use them.
func ParsePackageWeight(quantity string) (float64, bool) {
	match := quantityPattern.FindStringSubmatch(quantity)
	if match == nil {
		return 0, false
	}

	raw := strings.ReplaceAll(match[1], ",", ".")
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(match[2]) {
	case "kg", "l":
		weight *= 1000
	}
	return weight, true
}
