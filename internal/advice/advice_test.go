package advice

import (
	"strings"
	"testing"

	"github.com/nutriscan/nutriscan/internal/models"
)

func foodProduct(grade string, n models.Nutrients) *models.Product {
	return &models.Product{Barcode: "3017620422003", Domain: models.DomainFood, Name: "Produit", Grade: grade, Nutrients: n}
}

func TestFoodGradeTexts(t *testing.T) {
	if got := For(foodProduct("A", models.Nutrients{})); !strings.HasPrefix(got, "Excellent nutritional choice") {
		t.Errorf("grade A advice = %q", got)
	}
	if got := For(foodProduct("E", models.Nutrients{})); !strings.HasPrefix(got, "Avoid daily consumption") {
		t.Errorf("grade E advice = %q", got)
	}
}

func TestFoodGradeANameHeuristics(t *testing.T) {
	p := foodProduct("A", models.Nutrients{})
	p.Name = "Yaourt nature"
	if got := For(p); !strings.Contains(got, "yogurt") {
		t.Errorf("yaourt advice = %q", got)
	}

	p.Name = "Salade de fruits"
	if got := For(p); !strings.Contains(got, "Fruits and vegetables") {
		t.Errorf("fruit advice = %q", got)
	}
}

func TestFoodNoGradeThresholds(t *testing.T) {
	// Low calories wins first, regardless of the other fields.
	if got := For(foodProduct("", models.Nutrients{Calories: 99, Fat: 4})); !strings.HasPrefix(got, "Low-calorie product") {
		t.Errorf("low-calorie advice = %q", got)
	}
	if got := For(foodProduct("", models.Nutrients{Calories: 200, Proteins: 11})); !strings.Contains(got, "High in protein") {
		t.Errorf("protein advice = %q", got)
	}
	if got := For(foodProduct("", models.Nutrients{Calories: 200, Sugars: 16})); !strings.Contains(got, "sugar content") {
		t.Errorf("sugar advice = %q", got)
	}
	if got := For(foodProduct("", models.Nutrients{Calories: 200})); !strings.Contains(got, "balanced diet") {
		t.Errorf("fallback advice = %q", got)
	}
	// Thresholds are strict: exactly 100 kcal is not "low calorie".
	if got := For(foodProduct("", models.Nutrients{Calories: 100})); strings.HasPrefix(got, "Low-calorie product") {
		t.Errorf("100 kcal should not match the low-calorie rule, got %q", got)
	}
}

func TestPetAdvice(t *testing.T) {
	p := &models.Product{Barcode: "1", Domain: models.DomainPet, Grade: "A"}
	if got := For(p); !strings.Contains(got, "your pet") {
		t.Errorf("pet grade A advice = %q", got)
	}

	p.Grade = ""
	p.Nutrients = models.Nutrients{Proteins: 26}
	if got := For(p); !strings.Contains(got, "High in protein") {
		t.Errorf("pet protein advice = %q", got)
	}

	p.Nutrients = models.Nutrients{Fat: 16}
	if got := For(p); !strings.Contains(got, "fat content") {
		t.Errorf("pet fat advice = %q", got)
	}

	p.Nutrients = models.Nutrients{}
	if got := For(p); !strings.Contains(got, "dietary needs") {
		t.Errorf("pet fallback advice = %q", got)
	}
}

func TestCosmeticKeywordRules(t *testing.T) {
	p := &models.Product{Barcode: "1", Domain: models.DomainCosmetic, Ingredients: "aqua, methylparaben"}
	if got := For(p); !strings.Contains(got, "parabens") {
		t.Errorf("paraben advice = %q", got)
	}

	p.Ingredients = "sodium lauryl sulfate"
	if got := For(p); !strings.Contains(got, "sulfates") {
		t.Errorf("sulfate advice = %q", got)
	}

	p.Ingredients = ""
	p.Categories = "Organic skincare"
	if got := For(p); !strings.Contains(got, "Natural/organic") {
		t.Errorf("organic advice = %q", got)
	}

	p.Categories = "Lipstick"
	if got := For(p); !strings.Contains(got, "Check ingredients") {
		t.Errorf("generic text advice = %q", got)
	}
}

func TestCosmeticFallbackIsDeterministic(t *testing.T) {
	p := &models.Product{Barcode: "4012345678901", Domain: models.DomainCosmetic}
	first := For(p)
	for i := 0; i < 10; i++ {
		if got := For(p); got != first {
			t.Fatalf("cosmetic fallback not stable: %q then %q", first, got)
		}
	}

	found := false
	for _, tip := range cosmeticTips {
		if tip == first {
			found = true
		}
	}
	if !found {
		t.Errorf("fallback %q not from the fixed tip pool", first)
	}
}
