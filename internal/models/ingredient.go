// internal/models/ingredient.go
package models

import "strings"

// IngredientCategory enumerates the fixed ingredient categories.
type IngredientCategory string

const (
	CategoryProduce    IngredientCategory = "produce"
	CategoryMeat       IngredientCategory = "meat"
	CategoryDairy      IngredientCategory = "dairy"
	CategoryGrains     IngredientCategory = "grains"
	CategorySpices     IngredientCategory = "spices"
	CategoryCondiments IngredientCategory = "condiments"
	CategoryBeverages  IngredientCategory = "beverages"
	CategoryOther      IngredientCategory = "other"
)

func (c IngredientCategory) Valid() bool {
	switch c {
	case CategoryProduce, CategoryMeat, CategoryDairy, CategoryGrains,
		CategorySpices, CategoryCondiments, CategoryBeverages, CategoryOther:
		return true
	}
	return false
}

// Ingredient is read-only reference data owned by the Ingredient Store.
// Identity is immutable; metadata may change between snapshot refreshes.
type Ingredient struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Category         IngredientCategory `json:"category"`
	CanonicalUnit    string             `json:"canonicalUnit"`
	AlternativeUnits []string           `json:"alternativeUnits,omitempty"`
	RecognitionTags  []string           `json:"recognitionTags,omitempty"`
}

// unitSingularStopList holds units that end in "s" but are already singular.
var unitSingularStopList = map[string]bool{
	"molasses": true,
	"couscous": true,
	"swiss":    true,
}

// NormalizeUnit canonicalizes a freely specified unit for comparison:
// lowercased, trimmed, singular.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if len(u) > 1 && strings.HasSuffix(u, "s") && !unitSingularStopList[u] {
		u = strings.TrimSuffix(u, "s")
	}
	return u
}
