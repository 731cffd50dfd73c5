// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// searchRequestSchema validates the POST /recipes/search body before it
// reaches the façade. Pagination bounds here are structural only; the index
// layer additionally clamps pageSize to its configured maximum.
var searchRequestSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"term": map[string]interface{}{
			"type":      "string",
			"maxLength": 256,
		},
		"filters": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"cuisine": map[string]interface{}{
					"type": "string",
				},
				"difficulty": map[string]interface{}{
					"type": "string",
					"enum": []string{"easy", "medium", "hard"},
				},
				"maxPrepTimeMinutes": map[string]interface{}{
					"type":    "integer",
					"minimum": 0,
				},
				"maxCookTimeMinutes": map[string]interface{}{
					"type":    "integer",
					"minimum": 0,
				},
				"tags": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
			},
		},
		"availableIngredientIds": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string", "minLength": 1},
		},
		"page": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
		},
		"pageSize": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
		},
	},
	"required": []string{"page", "pageSize"},
}

// ValidateSearchRequest checks a decoded request body against the schema and
// returns a field-level description of every violation.
func ValidateSearchRequest(body map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(searchRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%s", strings.Join(details, "; "))
}
