// internal/store/ingredients.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/models"
)

// IngredientStore reads the ingredient reference data.
type IngredientStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewIngredientStore(db *sql.DB, log logger.Logger) *IngredientStore {
	return &IngredientStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "ingredient-store"}),
	}
}

const ingredientColumns = `id, name, category, canonical_unit, alternative_units, recognition_tags`

// GetIngredient returns a single ingredient, or NOT_FOUND.
func (s *IngredientStore) GetIngredient(ctx context.Context, id string) (*models.Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id)

	ing, err := scanIngredient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stderrors.NewNotFoundError("ingredient", id)
		}
		return nil, stderrors.NewStoreQueryFailedError("getIngredient", err)
	}
	return ing, nil
}

// ListIngredients returns the full reference set, for snapshot refreshes.
func (s *IngredientStore) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ingredientColumns+` FROM ingredients ORDER BY id`)
	if err != nil {
		return nil, stderrors.NewStoreQueryFailedError("listIngredients", err)
	}
	defer rows.Close()

	var out []models.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, stderrors.NewStoreQueryFailedError("listIngredients", err)
		}
		out = append(out, *ing)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewStoreQueryFailedError("listIngredients", err)
	}
	return out, nil
}

func scanIngredient(row rowScanner) (*models.Ingredient, error) {
	var ing models.Ingredient
	var altUnits, tags pq.StringArray
	err := row.Scan(&ing.ID, &ing.Name, &ing.Category, &ing.CanonicalUnit, &altUnits, &tags)
	if err != nil {
		return nil, err
	}
	ing.CanonicalUnit = models.NormalizeUnit(ing.CanonicalUnit)
	ing.AlternativeUnits = altUnits
	ing.RecognitionTags = tags
	return &ing, nil
}

// IngredientSnapshot holds an in-process copy of the ingredient reference
// data, refreshed on an interval. Readers share it lock-free between swaps;
// the engine treats it as read-only.
type IngredientSnapshot struct {
	store  *IngredientStore
	logger logger.Logger

	mu   sync.RWMutex
	byID map[string]models.Ingredient
}

func NewIngredientSnapshot(store *IngredientStore, log logger.Logger) *IngredientSnapshot {
	return &IngredientSnapshot{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "ingredient-snapshot"}),
		byID:   map[string]models.Ingredient{},
	}
}

// Refresh reloads the snapshot once. A failed refresh keeps the previous
// snapshot; staleness beats an empty reference set.
func (s *IngredientSnapshot) Refresh(ctx context.Context) error {
	ingredients, err := s.store.ListIngredients(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		next[ing.ID] = ing
	}

	s.mu.Lock()
	s.byID = next
	s.mu.Unlock()

	s.logger.Debug("ingredient snapshot refreshed", map[string]interface{}{
		"count": len(next),
	})
	return nil
}

// Run refreshes the snapshot on the given interval until ctx is cancelled.
func (s *IngredientSnapshot) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("ingredient snapshot refresh failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// Get returns an ingredient from the snapshot.
func (s *IngredientSnapshot) Get(id string) (models.Ingredient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ing, ok := s.byID[id]
	return ing, ok
}

// Len returns the snapshot size.
func (s *IngredientSnapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
