// internal/store/recipes.go
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/models"
)

// RecipeStore reads recipes from the externally-owned primary store. The
// engine never writes here; recipe mutations arrive via the index lifecycle
// hooks.
type RecipeStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRecipeStore(db *sql.DB, log logger.Logger) *RecipeStore {
	return &RecipeStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "recipe-store"}),
	}
}

const recipeColumns = `
	r.id, r.name, r.description, r.prep_time_minutes, r.cook_time_minutes,
	r.difficulty, r.cuisine, r.tags, r.steps, r.average_rating`

// GetRecipe returns a single recipe with its ingredient list, or NOT_FOUND.
func (s *RecipeStore) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes r WHERE r.id = $1`, id)

	recipe, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stderrors.NewNotFoundError("recipe", id)
		}
		return nil, stderrors.NewStoreQueryFailedError("getRecipe", err)
	}

	if err := s.attachIngredients(ctx, map[string]*models.Recipe{recipe.ID: recipe}); err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetRecipesByIngredientIDs returns every recipe whose ingredient list
// intersects ids by at least one entry. This is the candidate pool for the
// availability-only match path.
func (s *RecipeStore) GetRecipesByIngredientIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT `+recipeColumns+`
		FROM recipes r
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		WHERE ri.ingredient_id = ANY($1)
		ORDER BY r.id`, pq.Array(ids))
	if err != nil {
		return nil, stderrors.NewStoreQueryFailedError("getRecipesByIngredientIds", err)
	}
	defer rows.Close()

	byID := map[string]*models.Recipe{}
	order := []string{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, stderrors.NewStoreQueryFailedError("getRecipesByIngredientIds", err)
		}
		byID[recipe.ID] = recipe
		order = append(order, recipe.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewStoreQueryFailedError("getRecipesByIngredientIds", err)
	}

	if err := s.attachIngredients(ctx, byID); err != nil {
		return nil, err
	}

	out := make([]models.Recipe, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// GetRecipes loads the given recipe ids, preserving input order and skipping
// ids that no longer exist. Used to hydrate a search result page.
func (s *RecipeStore) GetRecipes(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes r WHERE r.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, stderrors.NewStoreQueryFailedError("getRecipes", err)
	}
	defer rows.Close()

	byID := map[string]*models.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, stderrors.NewStoreQueryFailedError("getRecipes", err)
		}
		byID[recipe.ID] = recipe
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewStoreQueryFailedError("getRecipes", err)
	}

	if err := s.attachIngredients(ctx, byID); err != nil {
		return nil, err
	}

	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ListRecipeIDs returns every recipe id in the store, for reconciliation.
func (s *RecipeStore) ListRecipeIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM recipes ORDER BY id`)
	if err != nil {
		return nil, stderrors.NewStoreQueryFailedError("listRecipeIds", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, stderrors.NewStoreQueryFailedError("listRecipeIds", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewStoreQueryFailedError("listRecipeIds", err)
	}
	return ids, nil
}

func (s *RecipeStore) attachIngredients(ctx context.Context, byID map[string]*models.Recipe) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, ingredient_id, quantity, unit, optional
		FROM recipe_ingredients
		WHERE recipe_id = ANY($1)
		ORDER BY recipe_id, position`, pq.Array(ids))
	if err != nil {
		return stderrors.NewStoreQueryFailedError("attachIngredients", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		var ing models.RecipeIngredient
		if err := rows.Scan(&recipeID, &ing.IngredientID, &ing.Quantity, &ing.Unit, &ing.Optional); err != nil {
			return stderrors.NewStoreQueryFailedError("attachIngredients", err)
		}
		ing.Unit = models.NormalizeUnit(ing.Unit)
		if r, ok := byID[recipeID]; ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var r models.Recipe
	var tags, steps pq.StringArray
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.PrepTimeMinutes, &r.CookTimeMinutes,
		&r.Difficulty, &r.Cuisine, &tags, &steps, &r.AverageRating,
	)
	if err != nil {
		return nil, err
	}
	r.Tags = tags
	r.Steps = steps
	return &r, nil
}
