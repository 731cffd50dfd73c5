// internal/match/engine.go
package match

import (
	"sort"

	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/metrics"
	"recipe-engine/internal/models"
)

// ScoreEpsilon guards the threshold comparison against floating-point
// representation error so a score sitting exactly on the threshold does not
// flap in and out of the result set between runs.
const ScoreEpsilon = 1e-9

// Engine computes availability match scores over a candidate recipe pool.
// Pure in-memory computation; stateless and safe for concurrent use.
type Engine struct {
	threshold float64
	logger    logger.Logger
}

func NewEngine(threshold float64, log logger.Logger) *Engine {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.5
	}
	return &Engine{
		threshold: threshold,
		logger:    log.WithFields(map[string]interface{}{"component": "match-engine"}),
	}
}

// Threshold returns the configured minimum match score.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Score computes the MatchResult for a single recipe. Optional ingredients
// are excluded from both the numerator and the denominator: not having an
// optional ingredient must not penalize a match. The second return value is
// false when the recipe has no countable ingredients and must be skipped.
func (e *Engine) Score(recipe *models.Recipe, availability models.AvailabilitySet) (models.MatchResult, bool) {
	matched := 0
	total := 0
	var missing []string

	for _, ing := range recipe.Ingredients {
		if ing.Optional {
			continue
		}
		total++
		if availability[ing.IngredientID] {
			matched++
		} else {
			missing = append(missing, ing.IngredientID)
		}
	}

	if total == 0 {
		// Rejected at write time upstream; reaching here means the source
		// data drifted. Skip and log, never abort the batch.
		e.logger.Warn("recipe has no countable ingredients, skipping", map[string]interface{}{
			"recipeId": recipe.ID,
			"code":     "DATA_INTEGRITY_WARNING",
		})
		metrics.DataIntegrityWarnings.Inc()
		return models.MatchResult{}, false
	}

	sort.Strings(missing)

	return models.MatchResult{
		RecipeID:             recipe.ID,
		MatchedCount:         matched,
		TotalCount:           total,
		MatchScore:           float64(matched) / float64(total),
		MissingIngredientIDs: missing,
		AverageRating:        recipe.AverageRating,
	}, true
}

// Match scores the candidate pool, keeps results at or above the threshold,
// and ranks them. An empty availability set matches nothing, not everything.
func (e *Engine) Match(pool []models.Recipe, availability models.AvailabilitySet) []models.MatchResult {
	if len(availability) == 0 {
		return nil
	}

	results := make([]models.MatchResult, 0, len(pool))
	for i := range pool {
		result, ok := e.Score(&pool[i], availability)
		if !ok {
			continue
		}
		if result.MatchScore >= e.threshold-ScoreEpsilon {
			results = append(results, result)
		}
	}

	Rank(results)
	return results
}

// Rank sorts results by matchScore desc, then averageRating desc, then
// recipe id asc. The chain is a total order, which keeps pagination stable
// across repeated calls with unchanged data.
func Rank(results []models.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		if results[i].AverageRating != results[j].AverageRating {
			return results[i].AverageRating > results[j].AverageRating
		}
		return results[i].RecipeID < results[j].RecipeID
	})
}

// Paginate slices a ranked result list. Page is 1-based.
func Paginate(results []models.MatchResult, page, pageSize int) []models.MatchResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(results) {
		return nil
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
