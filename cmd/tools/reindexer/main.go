// cmd/tools/reindexer/main.go
//
// Reindexer reconciles the search index with the primary recipe store.
//
//	reindexer full            rebuild every recipe document from the store
//	reindexer one -id <id>    reindex a single recipe
//	reindexer remove -id <id> remove a single recipe document
//	reindexer drift [-fix]    report ids out of sync, optionally repair them
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"recipe-engine/internal/common/config"
	"recipe-engine/internal/common/database"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/search"
	"recipe-engine/internal/store"
	"recipe-engine/pkg/synonyms"
)

const idPageSize = 1000

func main() {
	oneCmd := flag.NewFlagSet("one", flag.ExitOnError)
	removeCmd := flag.NewFlagSet("remove", flag.ExitOnError)
	driftCmd := flag.NewFlagSet("drift", flag.ExitOnError)

	idOne := oneCmd.String("id", "", "Recipe id to reindex")
	idRemove := removeCmd.String("id", "", "Recipe id to remove from the index")
	fix := driftCmd.Bool("fix", false, "Repair drifted ids instead of only reporting them")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error connecting to elasticsearch: %v\n", err)
		os.Exit(1)
	}

	recipeStore := store.NewRecipeStore(pg.DB, log)
	ingredientStore := store.NewIngredientStore(pg.DB, log)
	snapshot := store.NewIngredientSnapshot(ingredientStore, log)
	if err := snapshot.Refresh(ctx); err != nil {
		zapLog.Warn("ingredient snapshot refresh failed, documents will fall back to ids", zap.Error(err))
	}

	indexer := search.NewIndexer(esClient.Client, cfg.Search.IndexName, cfg.Match.MaxIngredientsPerRecipe, snapshot.Get, log)

	reg, err := synonyms.Load(cfg.Search.SynonymsPath)
	if err != nil {
		fmt.Printf("Error loading synonym registry: %v\n", err)
		os.Exit(1)
	}
	if err := indexer.EnsureIndex(ctx, reg); err != nil {
		fmt.Printf("Error ensuring index: %v\n", err)
		os.Exit(1)
	}

	r := &reindexer{
		store:     recipeStore,
		indexer:   indexer,
		es:        esClient.Client,
		indexName: cfg.Search.IndexName,
	}

	switch os.Args[1] {
	case "full":
		count, err := r.full(ctx)
		if err != nil {
			fmt.Printf("Full reindex failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reindexed %d recipes\n", count)

	case "one":
		oneCmd.Parse(os.Args[2:])
		if *idOne == "" {
			fmt.Println("Error: -id is required for one.")
			oneCmd.Usage()
			os.Exit(1)
		}
		if err := r.one(ctx, *idOne); err != nil {
			fmt.Printf("Reindex failed for %s: %v\n", *idOne, err)
			os.Exit(1)
		}
		fmt.Printf("Reindexed recipe %s\n", *idOne)

	case "remove":
		removeCmd.Parse(os.Args[2:])
		if *idRemove == "" {
			fmt.Println("Error: -id is required for remove.")
			removeCmd.Usage()
			os.Exit(1)
		}
		if err := r.indexer.Remove(ctx, *idRemove); err != nil {
			fmt.Printf("Remove failed for %s: %v\n", *idRemove, err)
			os.Exit(1)
		}
		fmt.Printf("Removed recipe %s from index\n", *idRemove)

	case "drift":
		driftCmd.Parse(os.Args[2:])
		missing, orphaned, err := r.drift(ctx)
		if err != nil {
			fmt.Printf("Drift check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Drift report: %d missing from index, %d orphaned in index\n", len(missing), len(orphaned))
		for _, id := range missing {
			fmt.Printf("  missing: %s\n", id)
		}
		for _, id := range orphaned {
			fmt.Printf("  orphaned: %s\n", id)
		}
		if *fix {
			if err := r.repair(ctx, missing, orphaned); err != nil {
				fmt.Printf("Drift repair failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Drift repaired.")
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

type reindexer struct {
	store     *store.RecipeStore
	indexer   *search.Indexer
	es        *elasticsearch.Client
	indexName string
}

// full rebuilds every document from the primary store. Invalid recipes are
// reported and skipped so one bad row cannot abort the rebuild.
func (r *reindexer) full(ctx context.Context) (int, error) {
	ids, err := r.store.ListRecipeIDs(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for start := 0; start < len(ids); start += idPageSize {
		end := start + idPageSize
		if end > len(ids) {
			end = len(ids)
		}

		recipes, err := r.store.GetRecipes(ctx, ids[start:end])
		if err != nil {
			return indexed, err
		}
		for i := range recipes {
			if err := r.indexer.Index(ctx, &recipes[i]); err != nil {
				fmt.Printf("  skipping %s: %v\n", recipes[i].ID, err)
				continue
			}
			indexed++
		}
	}
	return indexed, nil
}

func (r *reindexer) one(ctx context.Context, id string) error {
	recipe, err := r.store.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	return r.indexer.Index(ctx, recipe)
}

// drift compares the id sets of the store and the index. Missing ids exist in
// the store but not the index; orphaned ids exist only in the index.
func (r *reindexer) drift(ctx context.Context) (missing, orphaned []string, err error) {
	storeIDs, err := r.store.ListRecipeIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	indexIDs, err := r.listIndexIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	inStore := make(map[string]bool, len(storeIDs))
	for _, id := range storeIDs {
		inStore[id] = true
	}
	inIndex := make(map[string]bool, len(indexIDs))
	for _, id := range indexIDs {
		inIndex[id] = true
	}

	for _, id := range storeIDs {
		if !inIndex[id] {
			missing = append(missing, id)
		}
	}
	for _, id := range indexIDs {
		if !inStore[id] {
			orphaned = append(orphaned, id)
		}
	}
	sort.Strings(missing)
	sort.Strings(orphaned)
	return missing, orphaned, nil
}

func (r *reindexer) repair(ctx context.Context, missing, orphaned []string) error {
	for _, id := range missing {
		if err := r.one(ctx, id); err != nil {
			return fmt.Errorf("reindex %s: %w", id, err)
		}
	}
	for _, id := range orphaned {
		if err := r.indexer.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}
	return nil
}

// listIndexIDs pages through the whole index with search_after on the id
// keyword field, fetching no document sources.
func (r *reindexer) listIndexIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var after string

	for {
		body := map[string]interface{}{
			"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":    []interface{}{map[string]interface{}{"id": "asc"}},
			"_source": false,
		}
		if after != "" {
			body["search_after"] = []interface{}{after}
		}
		raw, _ := json.Marshal(body)

		size := idPageSize
		res, err := esapi.SearchRequest{
			Index: []string{r.indexName},
			Body:  strings.NewReader(string(raw)),
			Size:  &size,
		}.Do(ctx, r.es)
		if err != nil {
			return nil, err
		}

		var parsed struct {
			Hits struct {
				Hits []struct {
					ID string `json:"_id"`
				} `json:"hits"`
			} `json:"hits"`
		}
		if res.IsError() {
			res.Body.Close()
			return nil, fmt.Errorf("list index ids: %s", res.Status())
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			res.Body.Close()
			return nil, err
		}
		res.Body.Close()

		if len(parsed.Hits.Hits) == 0 {
			return ids, nil
		}
		for _, h := range parsed.Hits.Hits {
			ids = append(ids, h.ID)
		}
		after = parsed.Hits.Hits[len(parsed.Hits.Hits)-1].ID
	}
}

func help() {
	fmt.Println(`Usage: reindexer <command> [flags]

Commands:
  full              Rebuild every recipe document from the primary store
  one -id <id>      Reindex a single recipe
  remove -id <id>   Remove a single recipe document from the index
  drift [-fix]      Report store/index drift; -fix repairs it
  help              Show this message`)
}
