// internal/search/search.go
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/models"
)

// Result is one ranked page of recipe ids plus the total hit count.
type Result struct {
	Hits  []models.SearchHit
	Total int64
	Took  int64
}

// Searcher executes fielded/full-text queries against the recipe index.
type Searcher struct {
	client      *elasticsearch.Client
	indexName   string
	maxPageSize int
	logger      logger.Logger
}

func NewSearcher(client *elasticsearch.Client, indexName string, maxPageSize int, log logger.Logger) *Searcher {
	if maxPageSize < 1 {
		maxPageSize = 100
	}
	return &Searcher{
		client:      client,
		indexName:   indexName,
		maxPageSize: maxPageSize,
		logger:      log.WithFields(map[string]interface{}{"component": "searcher", "index": indexName}),
	}
}

// Search returns a ranked page for the given term and filters.
func (s *Searcher) Search(ctx context.Context, term string, filters models.Filters, page, pageSize int) (*Result, error) {
	body := BuildSearchQuery(term, filters)
	return s.execute(ctx, body, page, pageSize)
}

// SearchByAvailability returns the candidate page of recipes intersecting the
// availability set by at least one ingredient id.
func (s *Searcher) SearchByAvailability(ctx context.Context, availability models.AvailabilitySet, page, pageSize int) (*Result, error) {
	body := BuildAvailabilityQuery(availability)
	return s.execute(ctx, body, page, pageSize)
}

func (s *Searcher) execute(ctx context.Context, queryBody map[string]interface{}, page, pageSize int) (*Result, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	if page < 1 {
		page = 1
	}
	from := (page - 1) * pageSize

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{s.indexName},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &pageSize,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, stderrors.NewSearchTimeoutError(s.indexName)
		}
		return nil, stderrors.NewIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, stderrors.NewIndexNotFoundError(s.indexName)
	}
	if res.IsError() {
		return nil, stderrors.NewSearchQueryFailedError(fmt.Errorf("search query failed: %s", res.Status()))
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, stderrors.NewSearchQueryFailedError(err)
	}

	return parseSearchResponse(r)
}

func parseSearchResponse(r map[string]interface{}) (*Result, error) {
	hitsWrapper, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, stderrors.NewSearchQueryFailedError(fmt.Errorf("malformed search response: missing hits"))
	}

	result := &Result{}
	if took, ok := r["took"].(float64); ok {
		result.Took = int64(took)
	}
	if total, ok := hitsWrapper["total"].(map[string]interface{}); ok {
		if value, ok := total["value"].(float64); ok {
			result.Total = int64(value)
		}
	}

	rawHits, ok := hitsWrapper["hits"].([]interface{})
	if !ok {
		return result, nil
	}

	for _, raw := range rawHits {
		hit, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		sh := models.SearchHit{}
		if id, ok := hit["_id"].(string); ok {
			sh.RecipeID = id
		}
		if score, ok := hit["_score"].(float64); ok {
			sh.Score = score
		}
		if source, ok := hit["_source"].(map[string]interface{}); ok {
			if rating, ok := source["average_rating"].(float64); ok {
				sh.AverageRating = rating
			}
		}
		result.Hits = append(result.Hits, sh)
	}

	return result, nil
}

// IDs lists the recipe ids of the page in rank order.
func (r *Result) IDs() []string {
	ids := make([]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		ids = append(ids, h.RecipeID)
	}
	return ids
}
