// internal/search/document.go
package search

import "recipe-engine/internal/models"

// IngredientDoc is the nested ingredient sub-document. The name is
// denormalized from the ingredient reference data at index time so text
// queries can match on it.
type IngredientDoc struct {
	IngredientID string   `json:"ingredient_id"`
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	Optional     bool     `json:"optional"`
	Tags         []string `json:"tags,omitempty"`
}

// Document is the index-side projection of a recipe. It must stay in sync
// with the primary store within the configured staleness window; the
// reindexer tool reconciles drift.
type Document struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Ingredients     []IngredientDoc `json:"ingredients"`
	Tags            []string        `json:"tags,omitempty"`
	Cuisine         string          `json:"cuisine,omitempty"`
	Difficulty      string          `json:"difficulty"`
	PrepTimeMinutes int             `json:"prep_time_minutes"`
	CookTimeMinutes int             `json:"cook_time_minutes"`
	AverageRating   float64         `json:"average_rating"`
}

// IngredientLookup resolves ingredient reference data by id, typically backed
// by the in-process snapshot.
type IngredientLookup func(id string) (models.Ingredient, bool)

// BuildDocument projects a recipe into its SearchDocument. Unknown ingredient
// ids keep the id as the name so the document is still indexable.
func BuildDocument(recipe *models.Recipe, lookup IngredientLookup) Document {
	doc := Document{
		ID:              recipe.ID,
		Name:            recipe.Name,
		Description:     recipe.Description,
		Tags:            recipe.Tags,
		Cuisine:         recipe.Cuisine,
		Difficulty:      string(recipe.Difficulty),
		PrepTimeMinutes: recipe.PrepTimeMinutes,
		CookTimeMinutes: recipe.CookTimeMinutes,
		AverageRating:   recipe.AverageRating,
	}

	doc.Ingredients = make([]IngredientDoc, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		ingDoc := IngredientDoc{
			IngredientID: ri.IngredientID,
			Name:         ri.IngredientID,
			Quantity:     ri.Quantity,
			Unit:         models.NormalizeUnit(ri.Unit),
			Optional:     ri.Optional,
		}
		if lookup != nil {
			if ing, ok := lookup(ri.IngredientID); ok {
				ingDoc.Name = ing.Name
				ingDoc.Tags = ing.RecognitionTags
			}
		}
		doc.Ingredients = append(doc.Ingredients, ingDoc)
	}

	return doc
}
