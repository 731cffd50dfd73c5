// internal/match/engine_test.go
package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEngine(t *testing.T, threshold float64) *Engine {
	return NewEngine(threshold, logger.NewTestLogger(t))
}

func recipe(id string, rating float64, ingredients ...models.RecipeIngredient) models.Recipe {
	return models.Recipe{
		ID:            id,
		Name:          "recipe " + id,
		Ingredients:   ingredients,
		Difficulty:    models.DifficultyEasy,
		AverageRating: rating,
	}
}

func required(id string) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: id, Quantity: 1, Unit: "cup"}
}

func optional(id string) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: id, Quantity: 1, Unit: "cup", Optional: true}
}

// ==========================
// Scoring Tests
// ==========================

func TestEngine_Score(t *testing.T) {
	engine := newTestEngine(t, 0.5)

	tests := []struct {
		name            string
		recipe          models.Recipe
		availability    []string
		expectedMatched int
		expectedTotal   int
		expectedScore   float64
		expectedMissing []string
	}{
		{
			name:            "partial match over required ingredients",
			recipe:          recipe("r1", 4.0, required("tomato"), required("onion"), required("garlic")),
			availability:    []string{"tomato", "onion"},
			expectedMatched: 2,
			expectedTotal:   3,
			expectedScore:   2.0 / 3.0,
			expectedMissing: []string{"garlic"},
		},
		{
			name:            "optional ingredient excluded from both counts",
			recipe:          recipe("r2", 4.5, required("tomato"), required("onion"), required("garlic"), optional("basil")),
			availability:    []string{"tomato", "onion", "garlic"},
			expectedMatched: 3,
			expectedTotal:   3,
			expectedScore:   1.0,
		},
		{
			name:            "having the optional ingredient does not inflate the score",
			recipe:          recipe("r3", 4.0, required("tomato"), required("onion"), optional("basil")),
			availability:    []string{"tomato", "basil"},
			expectedMatched: 1,
			expectedTotal:   2,
			expectedScore:   0.5,
			expectedMissing: []string{"onion"},
		},
		{
			name:            "no overlap",
			recipe:          recipe("r4", 3.0, required("flour"), required("sugar")),
			availability:    []string{"tomato"},
			expectedMatched: 0,
			expectedTotal:   2,
			expectedScore:   0,
			expectedMissing: []string{"flour", "sugar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := engine.Score(&tt.recipe, models.NewAvailabilitySet(tt.availability))
			require.True(t, ok)

			assert.Equal(t, tt.recipe.ID, result.RecipeID)
			assert.Equal(t, tt.expectedMatched, result.MatchedCount)
			assert.Equal(t, tt.expectedTotal, result.TotalCount)
			assert.InDelta(t, tt.expectedScore, result.MatchScore, 1e-12)
			assert.Equal(t, tt.expectedMissing, result.MissingIngredientIDs)
		})
	}
}

func TestEngine_Score_OptionalToggleInvariance(t *testing.T) {
	engine := newTestEngine(t, 0.5)
	availability := models.NewAvailabilitySet([]string{"tomato", "onion"})

	base := recipe("r1", 4.0, required("tomato"), required("onion"), required("garlic"))
	withOptional := recipe("r1", 4.0, required("tomato"), required("onion"), required("garlic"), optional("basil"))

	baseResult, ok := engine.Score(&base, availability)
	require.True(t, ok)
	toggledResult, ok := engine.Score(&withOptional, availability)
	require.True(t, ok)

	// Toggling an unavailable ingredient to optional never lowers the score.
	assert.Equal(t, baseResult.MatchScore, toggledResult.MatchScore)
	assert.Equal(t, baseResult.MatchedCount, toggledResult.MatchedCount)
	assert.Equal(t, baseResult.TotalCount, toggledResult.TotalCount)
}

func TestEngine_Score_AllOptionalIsSkipped(t *testing.T) {
	engine := newTestEngine(t, 0.5)
	r := recipe("r1", 4.0, optional("basil"), optional("mint"))

	_, ok := engine.Score(&r, models.NewAvailabilitySet([]string{"basil"}))
	assert.False(t, ok)
}

// ==========================
// Match and Threshold Tests
// ==========================

func TestEngine_Match(t *testing.T) {
	engine := newTestEngine(t, 0.5)

	pool := []models.Recipe{
		recipe("r1", 4.0, required("tomato"), required("onion"), required("garlic")),
		recipe("r2", 4.5, required("tomato"), required("onion"), required("garlic"), optional("basil")),
		recipe("r3", 5.0, required("flour"), required("sugar"), required("butter"), required("eggs")),
	}

	results := engine.Match(pool, models.NewAvailabilitySet([]string{"tomato", "onion", "garlic"}))
	require.Len(t, results, 2)

	// r2 scores 1.0 and outranks r1 at 2/3; r3 at 0 falls below the threshold.
	assert.Equal(t, "r2", results[0].RecipeID)
	assert.InDelta(t, 1.0, results[0].MatchScore, 1e-12)
	assert.Equal(t, "r1", results[1].RecipeID)
	assert.InDelta(t, 2.0/3.0, results[1].MatchScore, 1e-12)
}

func TestEngine_Match_EmptyAvailabilityMatchesNothing(t *testing.T) {
	engine := newTestEngine(t, 0.5)
	pool := []models.Recipe{
		recipe("r1", 4.0, required("tomato")),
	}

	results := engine.Match(pool, models.AvailabilitySet{})
	assert.Empty(t, results)
}

func TestEngine_Match_ThresholdEpsilon(t *testing.T) {
	// 1/3 + 1/3 + ... style float error must not drop a recipe sitting
	// exactly on the threshold.
	engine := newTestEngine(t, 0.5)

	pool := []models.Recipe{
		recipe("edge", 4.0, required("a"), required("b"), required("c"), required("d")),
	}
	results := engine.Match(pool, models.NewAvailabilitySet([]string{"a", "b"}))
	require.Len(t, results, 1)
	assert.InDelta(t, 0.5, results[0].MatchScore, 1e-12)
}

func TestEngine_Match_SkipsZeroIngredientRecipes(t *testing.T) {
	engine := newTestEngine(t, 0.5)

	pool := []models.Recipe{
		recipe("good", 4.0, required("tomato")),
		recipe("bad", 5.0, optional("basil")),
	}
	results := engine.Match(pool, models.NewAvailabilitySet([]string{"tomato", "basil"}))
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].RecipeID)
}

func TestEngine_Match_Deterministic(t *testing.T) {
	engine := newTestEngine(t, 0.5)
	availability := models.NewAvailabilitySet([]string{"tomato", "onion"})

	pool := []models.Recipe{
		recipe("b", 4.0, required("tomato"), required("onion")),
		recipe("a", 4.0, required("tomato"), required("onion")),
		recipe("c", 4.5, required("tomato"), required("onion")),
	}

	first := engine.Match(pool, availability)
	for i := 0; i < 5; i++ {
		again := engine.Match(pool, availability)
		assert.Equal(t, first, again)
	}

	// Tie on score: rating desc, then id asc.
	require.Len(t, first, 3)
	assert.Equal(t, "c", first[0].RecipeID)
	assert.Equal(t, "a", first[1].RecipeID)
	assert.Equal(t, "b", first[2].RecipeID)
}

// ==========================
// Ranking and Pagination Tests
// ==========================

func TestRank_TotalOrder(t *testing.T) {
	results := []models.MatchResult{
		{RecipeID: "r3", MatchScore: 0.5, AverageRating: 4.0},
		{RecipeID: "r1", MatchScore: 1.0, AverageRating: 3.0},
		{RecipeID: "r4", MatchScore: 0.5, AverageRating: 4.0},
		{RecipeID: "r2", MatchScore: 1.0, AverageRating: 5.0},
	}

	Rank(results)

	ids := []string{results[0].RecipeID, results[1].RecipeID, results[2].RecipeID, results[3].RecipeID}
	assert.Equal(t, []string{"r2", "r1", "r3", "r4"}, ids)
}

func TestPaginate(t *testing.T) {
	results := []models.MatchResult{
		{RecipeID: "r1"}, {RecipeID: "r2"}, {RecipeID: "r3"}, {RecipeID: "r4"}, {RecipeID: "r5"},
	}

	tests := []struct {
		name     string
		page     int
		pageSize int
		expected []string
	}{
		{"first page", 1, 2, []string{"r1", "r2"}},
		{"middle page", 2, 2, []string{"r3", "r4"}},
		{"short last page", 3, 2, []string{"r5"}},
		{"page past the end", 4, 2, nil},
		{"page below one clamps to first", 0, 2, []string{"r1", "r2"}},
		{"zero page size", 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(results, tt.page, tt.pageSize)
			var ids []string
			for _, r := range page {
				ids = append(ids, r.RecipeID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}
