// internal/store/ingredients_test.go
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

var ingredientListColumns = []string{
	"id", "name", "category", "canonical_unit", "alternative_units", "recognition_tags",
}

func ingredientRows(pairs ...[2]string) *sqlmock.Rows {
	rows := sqlmock.NewRows(ingredientListColumns)
	for _, p := range pairs {
		rows.AddRow(p[0], p[1], "vegetable", "cup", pq.StringArray{}, pq.StringArray{})
	}
	return rows
}

func TestIngredientStore_GetIngredient_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewIngredientStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`FROM ingredients WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(ingredientListColumns))

	_, err := store.GetIngredient(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeNotFound, stderrors.KindOf(err))
}

func TestIngredientSnapshot_Refresh(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewIngredientStore(db, logger.NewTestLogger(t))
	snapshot := NewIngredientSnapshot(store, logger.NewTestLogger(t))

	mock.ExpectQuery(`FROM ingredients ORDER BY id`).
		WillReturnRows(ingredientRows([2]string{"ing-tomato", "tomato"}, [2]string{"ing-onion", "onion"}))

	require.NoError(t, snapshot.Refresh(context.Background()))
	assert.Equal(t, 2, snapshot.Len())

	ing, ok := snapshot.Get("ing-tomato")
	require.True(t, ok)
	assert.Equal(t, "tomato", ing.Name)

	_, ok = snapshot.Get("unknown")
	assert.False(t, ok)
}

func TestIngredientSnapshot_FailedRefreshKeepsPrevious(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewIngredientStore(db, logger.NewTestLogger(t))
	snapshot := NewIngredientSnapshot(store, logger.NewTestLogger(t))

	mock.ExpectQuery(`FROM ingredients ORDER BY id`).
		WillReturnRows(ingredientRows([2]string{"ing-tomato", "tomato"}))
	require.NoError(t, snapshot.Refresh(context.Background()))

	mock.ExpectQuery(`FROM ingredients ORDER BY id`).
		WillReturnError(sql.ErrConnDone)
	require.Error(t, snapshot.Refresh(context.Background()))

	// Staleness beats an empty reference set.
	assert.Equal(t, 1, snapshot.Len())
	_, ok := snapshot.Get("ing-tomato")
	assert.True(t, ok)
}
