// internal/store/recipes_test.go
package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var recipeRowColumns = []string{
	"id", "name", "description", "prep_time_minutes", "cook_time_minutes",
	"difficulty", "cuisine", "tags", "steps", "average_rating",
}

var ingredientRowColumns = []string{"recipe_id", "ingredient_id", "quantity", "unit", "optional"}

func recipeRow(mock sqlmock.Sqlmock, id, name string, rating float64) *sqlmock.Rows {
	return sqlmock.NewRows(recipeRowColumns).
		AddRow(id, name, "desc", 10, 20, "easy", "italian",
			pq.StringArray{"quick"}, pq.StringArray{"step one"}, rating)
}

// ==========================
// GetRecipe Tests
// ==========================

func TestRecipeStore_GetRecipe(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`FROM recipes r WHERE r.id = \$1`).
		WithArgs("r1").
		WillReturnRows(recipeRow(mock, "r1", "Tomato Pasta", 4.2))

	mock.ExpectQuery(`FROM recipe_ingredients`).
		WillReturnRows(sqlmock.NewRows(ingredientRowColumns).
			AddRow("r1", "ing-tomato", 3.0, "Cups", false).
			AddRow("r1", "ing-basil", 1.0, "tbsp", true))

	recipe, err := store.GetRecipe(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, "r1", recipe.ID)
	assert.Equal(t, "Tomato Pasta", recipe.Name)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "ing-tomato", recipe.Ingredients[0].IngredientID)
	assert.Equal(t, "cup", recipe.Ingredients[0].Unit, "units normalize at load time")
	assert.True(t, recipe.Ingredients[1].Optional)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeStore_GetRecipe_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`FROM recipes r WHERE r.id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recipeRowColumns))

	_, err := store.GetRecipe(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeNotFound, stderrors.KindOf(err))
}

func TestRecipeStore_GetRecipe_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`FROM recipes r WHERE r.id = \$1`).
		WithArgs("r1").
		WillReturnError(sql.ErrConnDone)

	_, err := store.GetRecipe(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeStoreQueryFailed, stderrors.KindOf(err))
	assert.True(t, stderrors.IsRetryable(err))
}

// ==========================
// Candidate Pool Tests
// ==========================

func TestRecipeStore_GetRecipesByIngredientIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	rows := sqlmock.NewRows(recipeRowColumns).
		AddRow("r1", "Pasta", "desc", 10, 20, "easy", "italian",
			pq.StringArray{}, pq.StringArray{}, 4.0).
		AddRow("r2", "Salad", "desc", 5, 0, "easy", "greek",
			pq.StringArray{}, pq.StringArray{}, 3.5)

	mock.ExpectQuery(`SELECT DISTINCT`).
		WillReturnRows(rows)

	mock.ExpectQuery(`FROM recipe_ingredients`).
		WillReturnRows(sqlmock.NewRows(ingredientRowColumns).
			AddRow("r1", "ing-tomato", 2.0, "cup", false).
			AddRow("r2", "ing-tomato", 1.0, "cup", false))

	recipes, err := store.GetRecipesByIngredientIDs(context.Background(), []string{"ing-tomato"})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "r1", recipes[0].ID)
	assert.Equal(t, "r2", recipes[1].ID)
}

func TestRecipeStore_GetRecipesByIngredientIDs_EmptyInput(t *testing.T) {
	db, _ := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	recipes, err := store.GetRecipesByIngredientIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, recipes)
}

// ==========================
// Hydration Tests
// ==========================

func TestRecipeStore_GetRecipes_PreservesOrderAndSkipsMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	// Rows come back in store order, not request order.
	rows := sqlmock.NewRows(recipeRowColumns).
		AddRow("r1", "Pasta", "desc", 10, 20, "easy", "italian",
			pq.StringArray{}, pq.StringArray{}, 4.0).
		AddRow("r3", "Soup", "desc", 15, 30, "medium", "french",
			pq.StringArray{}, pq.StringArray{}, 4.8)

	mock.ExpectQuery(`FROM recipes r WHERE r.id = ANY`).
		WillReturnRows(rows)

	mock.ExpectQuery(`FROM recipe_ingredients`).
		WillReturnRows(sqlmock.NewRows(ingredientRowColumns))

	recipes, err := store.GetRecipes(context.Background(), []string{"r3", "deleted", "r1"})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "r3", recipes[0].ID)
	assert.Equal(t, "r1", recipes[1].ID)
}

func TestRecipeStore_ListRecipeIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewRecipeStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`SELECT id FROM recipes ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r1").AddRow("r2"))

	ids, err := store.ListRecipeIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}
