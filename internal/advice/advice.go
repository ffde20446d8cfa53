// Package advice derives the short health recommendation shown under a
// resolved product. Generation is a pure function of the product snapshot:
// resolving the same barcode twice always yields the same text.
package advice

import (
	"hash/fnv"
	"strings"

	"github.com/nutriscan/nutriscan/internal/models"
)

// cosmeticTips is the generic fallback pool used when the upstream payload
// carries no ingredient or category text to inspect.
var cosmeticTips = []string{
	"Check ingredients for potential allergens before use.",
	"Perform a patch test if you have sensitive skin.",
	"Store in a cool, dry place away from direct sunlight.",
	"Check expiration date and replace when expired.",
}

// For generates the advisory text for a resolved product. Rules are evaluated
// in order and the first match wins.
func For(p *models.Product) string {
	switch p.Domain {
	case models.DomainCosmetic:
		return cosmetic(p)
	case models.DomainPet:
		return pet(p)
	default:
		return food(p)
	}
}

func cosmetic(p *models.Product) string {
	ingredients := strings.ToLower(p.Ingredients)
	categories := strings.ToLower(p.Categories)

	switch {
	case strings.Contains(ingredients, "paraben"):
		return "Contains parabens. Consider paraben-free alternatives if you have sensitive skin."
	case strings.Contains(ingredients, "sulfate"):
		return "Contains sulfates. May cause dryness for sensitive skin types."
	case strings.Contains(categories, "organic") || strings.Contains(categories, "natural"):
		return "Natural/organic product. Generally gentler on skin and environmentally friendly."
	case ingredients != "" || categories != "":
		return "Check ingredients for any known allergens. Patch test recommended for sensitive skin."
	}

	// No text to inspect at all: pick a generic tip, keyed on the barcode so
	// re-resolving the same product is stable.
	return cosmeticTips[int(hashBarcode(p.Barcode))%len(cosmeticTips)]
}

func pet(p *models.Product) string {
	switch p.Grade {
	case "A":
		return "Excellent choice for your pet! This product has an optimal nutritional composition."
	case "B":
		return "Good choice! This product is suitable for your pet's diet."
	case "C":
		return "Decent quality. Can be part of a balanced diet for your pet."
	case "D":
		return "Caution! This product has nutritional imbalances. Should be limited in your pet's diet."
	case "E":
		return "Poor nutritional quality. Not recommended for regular feeding."
	}

	if p.Nutrients.Proteins > 25 {
		return "High in protein! Ideal for your pet's muscle development."
	}
	if p.Nutrients.Fat > 15 {
		return "Watch the fat content. Check if this suits your pet's activity level."
	}
	return "Verify that this product meets your pet's specific dietary needs."
}

func food(p *models.Product) string {
	name := strings.ToLower(p.Name)

	switch p.Grade {
	case "A":
		if strings.Contains(name, "yaourt") || strings.Contains(name, "yogurt") {
			return "Excellent choice! This yogurt is a great source of protein and probiotics, perfect for a healthy snack or balanced breakfast."
		}
		if strings.Contains(name, "fruit") || strings.Contains(name, "légume") {
			return "Perfect! Fruits and vegetables are essential for a balanced diet. Rich in vitamins and fiber."
		}
		return "Excellent nutritional choice! This product is among the recommended foods for a healthy and balanced diet."
	case "B":
		return "Good choice! This product has good nutritional quality. Consume as part of a varied diet."
	case "C":
		return "Decent nutritional quality. Consume in moderation as part of a balanced diet."
	case "D":
		return "Caution! This product is high in fats, sugars or salt. Limit in your daily diet."
	case "E":
		return "Avoid daily consumption. Very high in fats, sugars or salt. Reserve for exceptional occasions."
	}

	switch {
	case p.Nutrients.Calories < 100:
		return "Low-calorie product, good for maintaining a healthy weight."
	case p.Nutrients.Proteins > 10:
		return "High in protein! Ideal for growth and maintaining muscle mass."
	case p.Nutrients.Sugars > 15:
		return "Watch the sugar content! Consume in moderation, especially between meals."
	}
	return "Remember to vary your diet and consume this product as part of a balanced diet."
}

func hashBarcode(barcode string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(barcode))
	return h.Sum32()
}
