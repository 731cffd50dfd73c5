// internal/models/match.go
package models

// MatchResult is the computed availability score for one recipe. Never
// persisted; recomputed per request or served from the result cache.
type MatchResult struct {
	RecipeID             string   `json:"recipeId"`
	MatchedCount         int      `json:"matchedCount"`
	TotalCount           int      `json:"totalCount"`
	MatchScore           float64  `json:"matchScore"`
	MissingIngredientIDs []string `json:"missingIngredientIds,omitempty"`
	AverageRating        float64  `json:"averageRating"`
}

// SearchHit is a pure search/filter result. MatchScore is a pointer because
// absence (no availability set supplied) is distinct from zero.
type SearchHit struct {
	RecipeID      string  `json:"recipeId"`
	AverageRating float64 `json:"averageRating"`
	Score         float64 `json:"score"`
}

// QueryResult is the façade's response payload, also the cache entry payload.
type QueryResult struct {
	Items  []QueryItem `json:"items"`
	Total  int64       `json:"total"`
	TookMs int64       `json:"tookMs"`
}

// QueryItem unifies match results and plain search hits. Match fields are
// pointers so they serialize as absent on the pure-search path.
type QueryItem struct {
	RecipeID             string   `json:"recipeId"`
	MatchScore           *float64 `json:"matchScore,omitempty"`
	MatchedCount         *int     `json:"matchedCount,omitempty"`
	TotalCount           *int     `json:"totalCount,omitempty"`
	MissingIngredientIDs []string `json:"missingIngredientIds,omitempty"`
	AverageRating        float64  `json:"averageRating"`
}
