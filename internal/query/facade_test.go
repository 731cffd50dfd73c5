// internal/query/facade_test.go
package query

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/metrics"
	"recipe-engine/internal/common/resilience"
	"recipe-engine/internal/match"
	"recipe-engine/internal/models"
	"recipe-engine/internal/search"
)

// ==========================
// Stub Collaborators
// ==========================

type stubSearcher struct {
	result *search.Result
	err    error
	calls  int
}

func (s *stubSearcher) Search(ctx context.Context, term string, filters models.Filters, page, pageSize int) (*search.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubRecipes struct {
	byIngredients []models.Recipe
	byIDs         []models.Recipe
	err           error
}

func (s *stubRecipes) GetRecipesByIngredientIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byIngredients, nil
}

func (s *stubRecipes) GetRecipes(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byIDs, nil
}

// blockingRecipes parks every read until the caller's context expires, then
// reports the context error wrapped the way the real store does.
type blockingRecipes struct{}

func (blockingRecipes) GetRecipesByIngredientIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	<-ctx.Done()
	return nil, stderrors.NewStoreQueryFailedError("recipes_by_ingredient_ids", ctx.Err())
}

func (blockingRecipes) GetRecipes(ctx context.Context, ids []string) ([]models.Recipe, error) {
	<-ctx.Done()
	return nil, stderrors.NewStoreQueryFailedError("recipes_by_ids", ctx.Err())
}

type stubCache struct {
	entries map[string]*models.QueryResult
	puts    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]*models.QueryResult{}}
}

func (c *stubCache) Get(ctx context.Context, fingerprint string) (*models.QueryResult, bool) {
	r, ok := c.entries[fingerprint]
	return r, ok
}

func (c *stubCache) Put(ctx context.Context, fingerprint string, result *models.QueryResult) {
	c.puts++
	c.entries[fingerprint] = result
}

// ==========================
// Test Helper Functions
// ==========================

func newTestFacade(t *testing.T, searcher Searcher, recipes RecipeSource, resultCache ResultCache) *Facade {
	log := logger.NewTestLogger(t)
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
	}, log)
	engine := match.NewEngine(0.5, log)

	return NewFacade(
		Config{Deadline: time.Second, CandidateLimit: 100, CacheEnabled: resultCache != nil},
		searcher, recipes, resultCache, engine, executor, nil, log,
	)
}

func matchRecipe(id string, rating float64, ingredientIDs ...string) models.Recipe {
	r := models.Recipe{ID: id, Name: id, Difficulty: models.DifficultyEasy, AverageRating: rating}
	for _, ing := range ingredientIDs {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{
			IngredientID: ing, Quantity: 1, Unit: "cup",
		})
	}
	return r
}

// ==========================
// Pure Search Path Tests
// ==========================

func TestFacade_Query_SearchPathOmitsMatchFields(t *testing.T) {
	searcher := &stubSearcher{result: &search.Result{
		Hits: []models.SearchHit{
			{RecipeID: "r1", AverageRating: 4.5, Score: 2.1},
			{RecipeID: "r2", AverageRating: 4.0, Score: 1.3},
		},
		Total: 2,
	}}
	facade := newTestFacade(t, searcher, &stubRecipes{}, nil)

	result, err := facade.Query(context.Background(), models.SearchRequest{
		Term: "pasta", Page: 1, PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.Nil(t, item.MatchScore, "matchScore must be absent without an availability set")
		assert.Nil(t, item.MatchedCount)
		assert.Nil(t, item.TotalCount)
	}
	assert.Equal(t, "r1", result.Items[0].RecipeID)
}

// ==========================
// Match Path Tests
// ==========================

func TestFacade_Query_AvailabilityOnlyUsesStorePool(t *testing.T) {
	searcher := &stubSearcher{}
	recipes := &stubRecipes{byIngredients: []models.Recipe{
		matchRecipe("r1", 4.0, "tomato", "onion", "garlic"),
		matchRecipe("r2", 4.5, "flour", "sugar", "butter"),
	}}
	facade := newTestFacade(t, searcher, recipes, nil)

	result, err := facade.Query(context.Background(), models.SearchRequest{
		AvailableIngredientIDs: []string{"tomato", "onion"},
		Page:                   1,
		PageSize:               20,
	})
	require.NoError(t, err)

	assert.Zero(t, searcher.calls, "availability-only path must not hit the search index")
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, "r1", item.RecipeID)
	require.NotNil(t, item.MatchScore)
	assert.Equal(t, 0.667, *item.MatchScore, "presentation rounding to three decimals")
	assert.Equal(t, 2, *item.MatchedCount)
	assert.Equal(t, 3, *item.TotalCount)
	assert.Equal(t, []string{"garlic"}, item.MissingIngredientIDs)
}

func TestFacade_Query_TermWithAvailabilityHydratesSearchResult(t *testing.T) {
	searcher := &stubSearcher{result: &search.Result{
		Hits:  []models.SearchHit{{RecipeID: "r1", AverageRating: 4.0}},
		Total: 1,
	}}
	recipes := &stubRecipes{byIDs: []models.Recipe{
		matchRecipe("r1", 4.0, "tomato", "onion"),
	}}
	facade := newTestFacade(t, searcher, recipes, nil)

	result, err := facade.Query(context.Background(), models.SearchRequest{
		Term:                   "pasta",
		AvailableIngredientIDs: []string{"tomato", "onion"},
		Page:                   1,
		PageSize:               20,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	require.Len(t, result.Items, 1)
	require.NotNil(t, result.Items[0].MatchScore)
	assert.Equal(t, 1.0, *result.Items[0].MatchScore)
}

// ==========================
// Cache Behavior Tests
// ==========================

func TestFacade_Query_CacheHitSkipsCompute(t *testing.T) {
	searcher := &stubSearcher{result: &search.Result{Total: 0}}
	resultCache := newStubCache()
	facade := newTestFacade(t, searcher, &stubRecipes{}, resultCache)

	req := models.SearchRequest{Term: "pasta", Page: 1, PageSize: 20}

	first, err := facade.Query(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 1, resultCache.puts)

	second, err := facade.Query(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls, "second identical request must be served from cache")
	assert.Equal(t, first, second)
}

func TestFacade_Query_FailureNeverPollutesCache(t *testing.T) {
	searcher := &stubSearcher{err: stderrors.NewIndexUnavailableError(assert.AnError)}
	resultCache := newStubCache()
	facade := newTestFacade(t, searcher, &stubRecipes{}, resultCache)

	_, err := facade.Query(context.Background(), models.SearchRequest{
		Term: "pasta", Page: 1, PageSize: 20,
	})
	require.Error(t, err)
	assert.Zero(t, resultCache.puts)
	assert.Empty(t, resultCache.entries)
}

// ==========================
// Degradation and Validation Tests
// ==========================

func TestFacade_Query_DegradesAfterRetryExhaustion(t *testing.T) {
	searcher := &stubSearcher{err: stderrors.NewIndexUnavailableError(assert.AnError)}
	facade := newTestFacade(t, searcher, &stubRecipes{}, nil)

	_, err := facade.Query(context.Background(), models.SearchRequest{
		Term: "pasta", Page: 1, PageSize: 20,
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeServiceDegraded, stderrors.KindOf(err))
	assert.Equal(t, 2, searcher.calls, "retryable index errors retry before degrading")
}

func TestFacade_Query_TimeoutSurfacesAsTimeout(t *testing.T) {
	searcher := &stubSearcher{err: stderrors.NewSearchTimeoutError("recipes")}
	facade := newTestFacade(t, searcher, &stubRecipes{}, nil)

	_, err := facade.Query(context.Background(), models.SearchRequest{
		Term: "pasta", Page: 1, PageSize: 20,
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeTimeout, stderrors.KindOf(err))
}

func TestFacade_Query_StoreDeadlineSurfacesAsTimeout(t *testing.T) {
	log := logger.NewTestLogger(t)
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
	}, log)
	facade := NewFacade(
		Config{Deadline: 20 * time.Millisecond, CandidateLimit: 100},
		&stubSearcher{}, blockingRecipes{}, nil, match.NewEngine(0.5, log), executor, nil, log,
	)

	_, err := facade.Query(context.Background(), models.SearchRequest{
		AvailableIngredientIDs: []string{"tomato"},
		Page:                   1,
		PageSize:               20,
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeTimeout, stderrors.KindOf(err),
		"a store read outliving the request deadline is a timeout, not a degradation")
}

func TestFacade_Query_TruncatedCandidatePoolIsCounted(t *testing.T) {
	before := testutil.ToFloat64(metrics.CandidatePoolTruncations)

	searcher := &stubSearcher{result: &search.Result{
		Hits:  []models.SearchHit{{RecipeID: "r1", AverageRating: 4.0}},
		Total: 250,
	}}
	recipes := &stubRecipes{byIDs: []models.Recipe{
		matchRecipe("r1", 4.0, "tomato", "onion"),
	}}
	facade := newTestFacade(t, searcher, recipes, nil)

	result, err := facade.Query(context.Background(), models.SearchRequest{
		Term:                   "pasta",
		AvailableIngredientIDs: []string{"tomato", "onion"},
		Page:                   1,
		PageSize:               20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total, "total counts matches within the capped pool")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CandidatePoolTruncations))
}

func TestFacade_Query_InvalidRequests(t *testing.T) {
	facade := newTestFacade(t, &stubSearcher{}, &stubRecipes{}, nil)

	tests := []struct {
		name string
		req  models.SearchRequest
	}{
		{"zero page", models.SearchRequest{Page: 0, PageSize: 20}},
		{"zero page size", models.SearchRequest{Page: 1, PageSize: 0}},
		{"bad difficulty", models.SearchRequest{
			Page: 1, PageSize: 20,
			Filters: models.Filters{Difficulty: "impossible"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := facade.Query(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, stderrors.ErrCodeInvalidQuery, stderrors.KindOf(err))
		})
	}
}
