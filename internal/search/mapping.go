// internal/search/mapping.go
package search

import "recipe-engine/pkg/synonyms"

// BuildIndexBody returns the settings and mappings for the recipe index.
// Text analysis folds case and strips stop-words before tokenization, so
// "Tomatoes" and "tomato" resolve to overlapping tokens. Ingredient names
// additionally run through the declared synonym filter; equivalences like
// scallion/green onion come from the registry, never from inference.
func BuildIndexBody(reg *synonyms.Registry) map[string]interface{} {
	synonymLines := []string{}
	if reg != nil {
		synonymLines = reg.FilterLines()
	}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"analysis": map[string]interface{}{
				"filter": map[string]interface{}{
					"recipe_stop": map[string]interface{}{
						"type":      "stop",
						"stopwords": "_english_",
					},
					"recipe_stemmer": map[string]interface{}{
						"type":     "stemmer",
						"language": "english",
					},
					"ingredient_synonyms": map[string]interface{}{
						"type":     "synonym",
						"synonyms": synonymLines,
					},
				},
				"analyzer": map[string]interface{}{
					"recipe_text": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "recipe_stop", "recipe_stemmer"},
					},
					"ingredient_text": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "recipe_stop", "ingredient_synonyms", "recipe_stemmer"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":          map[string]interface{}{"type": "keyword"},
				"name":        map[string]interface{}{"type": "text", "analyzer": "recipe_text"},
				"description": map[string]interface{}{"type": "text", "analyzer": "recipe_text"},
				"ingredients": map[string]interface{}{
					"type": "nested",
					"properties": map[string]interface{}{
						"ingredient_id": map[string]interface{}{"type": "keyword"},
						"name":          map[string]interface{}{"type": "text", "analyzer": "ingredient_text"},
						"quantity":      map[string]interface{}{"type": "float"},
						"unit":          map[string]interface{}{"type": "keyword"},
						"optional":      map[string]interface{}{"type": "boolean"},
						"tags":          map[string]interface{}{"type": "text", "analyzer": "ingredient_text"},
					},
				},
				"tags":              map[string]interface{}{"type": "keyword"},
				"cuisine":           map[string]interface{}{"type": "keyword"},
				"difficulty":        map[string]interface{}{"type": "keyword"},
				"prep_time_minutes": map[string]interface{}{"type": "integer"},
				"cook_time_minutes": map[string]interface{}{"type": "integer"},
				"average_rating":    map[string]interface{}{"type": "float"},
			},
		},
	}
}
