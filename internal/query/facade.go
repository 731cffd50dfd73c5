// internal/query/facade.go
package query

import (
	"context"
	"errors"
	"math"
	"time"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/metrics"
	"recipe-engine/internal/common/observability"
	"recipe-engine/internal/common/resilience"
	"recipe-engine/internal/cache"
	"recipe-engine/internal/match"
	"recipe-engine/internal/models"
	"recipe-engine/internal/search"
)

// Searcher is the façade's view of the search index read path.
type Searcher interface {
	Search(ctx context.Context, term string, filters models.Filters, page, pageSize int) (*search.Result, error)
}

// RecipeSource is the façade's view of the recipe store read path.
type RecipeSource interface {
	GetRecipesByIngredientIDs(ctx context.Context, ids []string) ([]models.Recipe, error)
	GetRecipes(ctx context.Context, ids []string) ([]models.Recipe, error)
}

// ResultCache is the façade's view of the result cache. Implementations
// swallow their own errors; a failure is just a miss.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*models.QueryResult, bool)
	Put(ctx context.Context, fingerprint string, result *models.QueryResult)
}

// Config holds the façade's operational knobs.
type Config struct {
	// Deadline bounds the compute path of one request.
	Deadline time.Duration
	// CandidateLimit caps the pool handed to the match engine when search
	// narrows the candidates.
	CandidateLimit int
	// CacheEnabled gates the result cache without redeploying.
	CacheEnabled bool
}

// Facade is the single entry point unifying free-text search, filters, and
// ingredient matching. Stateless; safe for concurrent requests.
type Facade struct {
	config   Config
	searcher Searcher
	recipes  RecipeSource
	cache    ResultCache
	engine   *match.Engine
	executor *resilience.Executor
	obs      *observability.Observability
	logger   logger.Logger
}

func NewFacade(
	config Config,
	searcher Searcher,
	recipes RecipeSource,
	resultCache ResultCache,
	engine *match.Engine,
	executor *resilience.Executor,
	obs *observability.Observability,
	log logger.Logger,
) *Facade {
	if config.Deadline <= 0 {
		config.Deadline = 400 * time.Millisecond
	}
	if config.CandidateLimit <= 0 {
		config.CandidateLimit = 500
	}
	return &Facade{
		config:   config,
		searcher: searcher,
		recipes:  recipes,
		cache:    resultCache,
		engine:   engine,
		executor: executor,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "query-facade"}),
	}
}

// Query executes one search/match request. Cache lookup strictly precedes
// computation; tookMs covers the compute path only. Concurrent requests for
// the same fingerprint may both miss and both compute; recomputation is
// idempotent and cheap, so no single-flight lock is held.
func (f *Facade) Query(ctx context.Context, req models.SearchRequest) (*models.QueryResult, error) {
	if err := validateRequest(req); err != nil {
		metrics.QueriesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	fingerprint := cache.Fingerprint(req)

	if f.config.CacheEnabled && f.cache != nil {
		if cached, ok := f.cache.Get(ctx, fingerprint); ok {
			metrics.QueriesTotal.WithLabelValues("cache_hit").Inc()
			f.obs.RecordQuery(ctx, "cache_hit")
			return cached, nil
		}
	}

	computeCtx, cancel := context.WithTimeout(ctx, f.config.Deadline)
	defer cancel()

	start := time.Now()
	result, err := f.compute(computeCtx, req)
	elapsed := time.Since(start)

	if err != nil {
		// Deadline expiry can reach here three ways: the raw context error,
		// a store/index error wrapping it, or a driver error reported after
		// the compute context already expired. All of them are a timeout,
		// not a degradation.
		deadlineHit := errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(computeCtx.Err(), context.DeadlineExceeded)
		if deadlineHit || stderrors.KindOf(err) == stderrors.ErrCodeSearchTimeout {
			metrics.QueriesTotal.WithLabelValues("timeout").Inc()
			f.obs.RecordQuery(ctx, "timeout")
			return nil, stderrors.NewTimeoutError("query deadline exceeded")
		}
		// Index/store retries are exhausted at this point. Degrade with an
		// explicit status instead of failing the caller's whole dashboard.
		metrics.QueriesTotal.WithLabelValues("degraded").Inc()
		f.obs.RecordQuery(ctx, "degraded")
		f.logger.Warn("query degraded", map[string]interface{}{
			"code":  string(stderrors.KindOf(err)),
			"error": err.Error(),
		})
		return nil, stderrors.NewServiceDegradedError(err)
	}

	result.TookMs = elapsed.Milliseconds()

	mode := "search"
	if len(req.AvailableIngredientIDs) > 0 {
		mode = "match"
	} else if req.NormalizedTerm() == "" {
		mode = "filters_only"
	}
	metrics.QueryComputeDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	metrics.QueriesTotal.WithLabelValues("computed").Inc()
	f.obs.RecordQuery(ctx, "computed")
	f.obs.RecordComputeDuration(ctx, elapsed, mode)

	if f.config.CacheEnabled && f.cache != nil {
		f.cache.Put(ctx, fingerprint, result)
	}

	return result, nil
}

func (f *Facade) compute(ctx context.Context, req models.SearchRequest) (*models.QueryResult, error) {
	availability := req.Availability()
	if len(availability) > 0 {
		return f.computeMatch(ctx, req, availability)
	}
	return f.computeSearch(ctx, req)
}

// computeSearch is the pure search/filter path. MatchScore is absent on
// every item, which is semantically distinct from zero.
func (f *Facade) computeSearch(ctx context.Context, req models.SearchRequest) (*models.QueryResult, error) {
	var res *search.Result
	err := f.executor.Execute(ctx, "search", func(ctx context.Context) error {
		var execErr error
		res, execErr = f.searcher.Search(ctx, req.NormalizedTerm(), req.Filters, req.Page, req.PageSize)
		return execErr
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.QueryItem, 0, len(res.Hits))
	for _, hit := range res.Hits {
		items = append(items, models.QueryItem{
			RecipeID:      hit.RecipeID,
			AverageRating: hit.AverageRating,
		})
	}

	return &models.QueryResult{Items: items, Total: res.Total}, nil
}

// computeMatch runs the match engine over the candidate pool: the full
// intersecting set when no term or filters narrow it, otherwise the recipes
// behind the search result.
func (f *Facade) computeMatch(ctx context.Context, req models.SearchRequest, availability models.AvailabilitySet) (*models.QueryResult, error) {
	var pool []models.Recipe

	if req.NormalizedTerm() == "" && req.Filters.Empty() {
		err := f.executor.Execute(ctx, "recipes-by-ingredients", func(ctx context.Context) error {
			var execErr error
			pool, execErr = f.recipes.GetRecipesByIngredientIDs(ctx, availability.SortedIDs())
			return execErr
		})
		if err != nil {
			return nil, err
		}
	} else {
		var res *search.Result
		err := f.executor.Execute(ctx, "search", func(ctx context.Context) error {
			var execErr error
			res, execErr = f.searcher.Search(ctx, req.NormalizedTerm(), req.Filters, 1, f.config.CandidateLimit)
			return execErr
		})
		if err != nil {
			return nil, err
		}

		// The pool is capped at CandidateLimit, so the reported total counts
		// matches within the cap, not within the full index.
		if res.Total > int64(f.config.CandidateLimit) {
			metrics.CandidatePoolTruncations.Inc()
			f.logger.Debug("candidate pool truncated", map[string]interface{}{
				"searchTotal":    res.Total,
				"candidateLimit": f.config.CandidateLimit,
			})
		}

		err = f.executor.Execute(ctx, "recipes-by-ids", func(ctx context.Context) error {
			var execErr error
			pool, execErr = f.recipes.GetRecipes(ctx, res.IDs())
			return execErr
		})
		if err != nil {
			return nil, err
		}
	}

	results := f.engine.Match(pool, availability)
	total := int64(len(results))
	page := match.Paginate(results, req.Page, req.PageSize)

	items := make([]models.QueryItem, 0, len(page))
	for _, r := range page {
		score := roundScore(r.MatchScore)
		matched := r.MatchedCount
		totalCount := r.TotalCount
		items = append(items, models.QueryItem{
			RecipeID:             r.RecipeID,
			MatchScore:           &score,
			MatchedCount:         &matched,
			TotalCount:           &totalCount,
			MissingIngredientIDs: r.MissingIngredientIDs,
			AverageRating:        r.AverageRating,
		})
	}

	return &models.QueryResult{Items: items, Total: total}, nil
}

func validateRequest(req models.SearchRequest) error {
	if req.Page < 1 {
		return stderrors.NewInvalidQueryError("page must be at least 1")
	}
	if req.PageSize < 1 {
		return stderrors.NewInvalidQueryError("pageSize must be at least 1")
	}
	if req.Filters.Difficulty != "" && !models.Difficulty(req.Filters.Difficulty).Valid() {
		return stderrors.NewInvalidQueryError("difficulty must be one of easy, medium, hard")
	}
	if req.Filters.MaxPrepTimeMinutes < 0 || req.Filters.MaxCookTimeMinutes < 0 {
		return stderrors.NewInvalidQueryError("time filters must be non-negative")
	}
	return nil
}

// roundScore applies the fixed-precision rounding used at the presentation
// boundary. The ranking comparator always works on the raw float.
func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
