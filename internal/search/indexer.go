// internal/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/metrics"
	"recipe-engine/internal/models"
	"recipe-engine/pkg/synonyms"
)

// Indexer owns the write path to the search index: the index/remove lifecycle
// hooks the recipe store's write path calls, plus index bootstrap. Writes are
// idempotent; callers retry with backoff on INDEX_UNAVAILABLE.
type Indexer struct {
	client         *elasticsearch.Client
	indexName      string
	maxIngredients int
	lookup         IngredientLookup
	logger         logger.Logger
}

func NewIndexer(client *elasticsearch.Client, indexName string, maxIngredients int, lookup IngredientLookup, log logger.Logger) *Indexer {
	return &Indexer{
		client:         client,
		indexName:      indexName,
		maxIngredients: maxIngredients,
		lookup:         lookup,
		logger:         log.WithFields(map[string]interface{}{"component": "indexer", "index": indexName}),
	}
}

// EnsureIndex creates the index with its analyzers and mappings if it does
// not exist yet. Safe to call on every startup.
func (ix *Indexer) EnsureIndex(ctx context.Context, reg *synonyms.Registry) error {
	existsRes, err := esapi.IndicesExistsRequest{
		Index: []string{ix.indexName},
	}.Do(ctx, ix.client)
	if err != nil {
		return stderrors.NewIndexUnavailableError(err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(BuildIndexBody(reg))
	if err != nil {
		return fmt.Errorf("marshal index body: %w", err)
	}

	res, err := esapi.IndicesCreateRequest{
		Index: ix.indexName,
		Body:  bytes.NewReader(body),
	}.Do(ctx, ix.client)
	if err != nil {
		return stderrors.NewIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return stderrors.NewSearchQueryFailedError(fmt.Errorf("create index: %s", res.Status()))
	}

	ix.logger.Info("search index created", map[string]interface{}{
		"synonymGroups": len(reg.Groups),
	})
	return nil
}

// Index inserts or replaces the SearchDocument for a recipe. Invalid recipes
// are rejected here rather than poisoning the index.
func (ix *Indexer) Index(ctx context.Context, recipe *models.Recipe) error {
	if err := recipe.Validate(ix.maxIngredients); err != nil {
		metrics.IndexOperations.WithLabelValues("index", "error").Inc()
		return stderrors.NewInvalidQueryError(err.Error())
	}

	doc := BuildDocument(recipe, ix.lookup)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      ix.indexName,
		DocumentID: recipe.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, ix.client)
	if err != nil {
		metrics.IndexOperations.WithLabelValues("index", "error").Inc()
		return stderrors.NewIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.IndexOperations.WithLabelValues("index", "error").Inc()
		return stderrors.NewSearchQueryFailedError(fmt.Errorf("index document: %s", res.Status()))
	}

	metrics.IndexOperations.WithLabelValues("index", "ok").Inc()
	ix.logger.Debug("recipe indexed", map[string]interface{}{"recipeId": recipe.ID})
	return nil
}

// Remove deletes a recipe's document. Absence is a no-op.
func (ix *Indexer) Remove(ctx context.Context, recipeID string) error {
	res, err := esapi.DeleteRequest{
		Index:      ix.indexName,
		DocumentID: recipeID,
	}.Do(ctx, ix.client)
	if err != nil {
		metrics.IndexOperations.WithLabelValues("remove", "error").Inc()
		return stderrors.NewIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		metrics.IndexOperations.WithLabelValues("remove", "ok").Inc()
		return nil
	}
	if res.IsError() {
		metrics.IndexOperations.WithLabelValues("remove", "error").Inc()
		return stderrors.NewSearchQueryFailedError(fmt.Errorf("delete document: %s", res.Status()))
	}

	metrics.IndexOperations.WithLabelValues("remove", "ok").Inc()
	ix.logger.Debug("recipe removed from index", map[string]interface{}{"recipeId": recipeID})
	return nil
}
