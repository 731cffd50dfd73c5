// internal/search/builders.go
package search

import (
	"strings"

	"recipe-engine/internal/models"
)

// BuildSearchQuery builds the recipe search body. Term matching is boosted:
// name 3x, nested ingredient names 2x, description 1x. Filters are ANDed as
// exact/bounded predicates. With an empty term the ranking degrades to
// filters-only with average rating as the sort key; the trailing id sort
// keeps pagination deterministic either way.
func BuildSearchQuery(term string, filters models.Filters) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	term = strings.TrimSpace(term)
	if term != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  term,
							"fields": []string{"name^3", "description"},
							"type":   "best_fields",
						},
					},
					map[string]interface{}{
						"nested": map[string]interface{}{
							"path": "ingredients",
							"query": map[string]interface{}{
								"match": map[string]interface{}{
									"ingredients.name": map[string]interface{}{
										"query": term,
										"boost": 2,
									},
								},
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if filters.Cuisine != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"cuisine": filters.Cuisine},
		})
	}
	if filters.Difficulty != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"difficulty": filters.Difficulty},
		})
	}
	if filters.MaxPrepTimeMinutes > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"prep_time_minutes": map[string]interface{}{"lte": filters.MaxPrepTimeMinutes},
			},
		})
	}
	if filters.MaxCookTimeMinutes > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"cook_time_minutes": map[string]interface{}{"lte": filters.MaxCookTimeMinutes},
			},
		})
	}
	if len(filters.Tags) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"tags": filters.Tags},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if term == "" {
		query["sort"] = []map[string]interface{}{
			{"average_rating": map[string]interface{}{"order": "desc"}},
			{"id": map[string]interface{}{"order": "asc"}},
		}
	} else {
		query["sort"] = []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"average_rating": map[string]interface{}{"order": "desc"}},
			{"id": map[string]interface{}{"order": "asc"}},
		}
	}

	return query
}

// BuildAvailabilityQuery selects recipes whose ingredient list intersects the
// availability set by at least one id. Used for candidate selection when the
// match engine runs against the index rather than a caller-supplied pool.
func BuildAvailabilityQuery(availability models.AvailabilitySet) map[string]interface{} {
	ids := availability.SortedIDs()
	if len(ids) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"nested": map[string]interface{}{
				"path": "ingredients",
				"query": map[string]interface{}{
					"terms": map[string]interface{}{
						"ingredients.ingredient_id": ids,
					},
				},
			},
		},
		"sort": []map[string]interface{}{
			{"id": map[string]interface{}{"order": "asc"}},
		},
	}
}
