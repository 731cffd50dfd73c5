// internal/models/recipe.go
package models

import "fmt"

// Difficulty enumerates recipe difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// RecipeIngredient is a value object owned by exactly one Recipe. Optional
// ingredients do not count toward the match denominator.
type RecipeIngredient struct {
	IngredientID string  `json:"ingredientId"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Optional     bool    `json:"optional"`
}

// Recipe is the engine's read-side view of a recipe. The engine never writes
// recipes; it only projects them into the search index.
type Recipe struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
	Steps           []string           `json:"steps,omitempty"`
	PrepTimeMinutes int                `json:"prepTimeMinutes"`
	CookTimeMinutes int                `json:"cookTimeMinutes"`
	Difficulty      Difficulty         `json:"difficulty"`
	Cuisine         string             `json:"cuisine"`
	Tags            []string           `json:"tags,omitempty"`
	AverageRating   float64            `json:"averageRating"`
}

// Validate enforces the write-time invariants before a recipe is accepted
// into the index. maxIngredients bounds the matching cost per recipe.
func (r *Recipe) Validate(maxIngredients int) error {
	if r.ID == "" {
		return fmt.Errorf("recipe id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe must reference at least one ingredient")
	}
	if maxIngredients > 0 && len(r.Ingredients) > maxIngredients {
		return fmt.Errorf("recipe has %d ingredients, limit is %d", len(r.Ingredients), maxIngredients)
	}
	for i, ing := range r.Ingredients {
		if ing.IngredientID == "" {
			return fmt.Errorf("ingredient %d: ingredientId is required", i)
		}
		if ing.Quantity <= 0 {
			return fmt.Errorf("ingredient %d: quantity must be positive", i)
		}
	}
	if r.PrepTimeMinutes < 0 || r.CookTimeMinutes < 0 {
		return fmt.Errorf("prep and cook times must be non-negative")
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", r.Difficulty)
	}
	if r.AverageRating < 0 || r.AverageRating > 5 {
		return fmt.Errorf("average rating must be within [0, 5], got %v", r.AverageRating)
	}
	return nil
}

// RequiredIngredientIDs returns the ids of non-optional ingredients, the set
// that forms the match denominator.
func (r *Recipe) RequiredIngredientIDs() []string {
	ids := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if !ing.Optional {
			ids = append(ids, ing.IngredientID)
		}
	}
	return ids
}
