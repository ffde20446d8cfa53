package models

import (
	"fmt"
	"strings"
	"time"
)

// Domain is the product category context selecting which external dataset
// and advisory rules apply.
type Domain string

const (
	DomainFood     Domain = "food"
	DomainPet      Domain = "pet"
	DomainCosmetic Domain = "cosmetic"
)

// DomainInfo groups the per-domain presentation and endpoint settings so the
// rest of the system dispatches on the enumeration instead of string literals.
type DomainInfo struct {
	Icon       string
	ColorToken string
	// BaseURL is the default product database endpoint for the domain.
	BaseURL string
}

var domainTable = map[Domain]DomainInfo{
	DomainFood:     {Icon: "utensils", ColorToken: "green", BaseURL: "https://world.openfoodfacts.org"},
	DomainPet:      {Icon: "paw", ColorToken: "amber", BaseURL: "https://world.openpetfoodfacts.org"},
	DomainCosmetic: {Icon: "sparkles", ColorToken: "pink", BaseURL: "https://world.openbeautyfacts.org"},
}

// ParseDomain maps a request string to a Domain, defaulting to food the way
// the product endpoint always has.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "food":
		return DomainFood, nil
	case "pet":
		return DomainPet, nil
	case "cosmetic":
		return DomainCosmetic, nil
	default:
		return "", fmt.Errorf("unknown product domain %q", s)
	}
}

// Info returns the presentation and endpoint settings for the domain.
func (d Domain) Info() DomainInfo {
	if info, ok := domainTable[d]; ok {
		return info
	}
	return domainTable[DomainFood]
}

func (d Domain) String() string { return string(d) }

// Nutrients holds the per-100g nutritional quadruple. Fields default to zero
// when the upstream payload omits them.
type Nutrients struct {
	Calories float64 `json:"calories"` // kcal
	Fat      float64 `json:"fat"`      // grams
	Sugars   float64 `json:"sugars"`   // grams
	Proteins float64 `json:"proteins"` // grams
}

// Scale returns the nutrients multiplied by the given factor.
func (n Nutrients) Scale(factor float64) Nutrients {
	return Nutrients{
		Calories: n.Calories * factor,
		Fat:      n.Fat * factor,
		Sugars:   n.Sugars * factor,
		Proteins: n.Proteins * factor,
	}
}

// Product is the normalized, cached result of looking up a barcode in a given
// domain. Immutable after resolution.
type Product struct {
	Barcode   string    `json:"barcode"`
	Domain    Domain    `json:"type"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Grade     string    `json:"nutriscore_grade,omitempty"` // A-E, meaning varies by domain
	Quantity  string    `json:"quantity,omitempty"`         // free text, e.g. "250g"
	Nutrients Nutrients `json:"nutritional_data"`
	// Ingredients and Categories are free-text hints from the upstream
	// payload, kept for cosmetic and pet advisory rules.
	Ingredients string    `json:"ingredients_text,omitempty"`
	Categories  string    `json:"categories,omitempty"`
	Advice      string    `json:"health_advice"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// PerPackage returns the nutrients scaled from per-100g to the whole package,
// based on the free-text quantity string. ok is false when the quantity does
// not carry a usable weight.
func (p *Product) PerPackage() (Nutrients, bool) {
	grams, ok := ParsePackageWeight(p.Quantity)
	if !ok || grams <= 0 {
		return Nutrients{}, false
	}
	return p.Nutrients.Scale(grams / 100), true
}
