package cookbook

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/mcp-regex-workbench/internal/domain"
)

// Catalog is an immutable set of recipes with an in-memory full-text index.
type Catalog struct {
	index   bleve.Index
	recipes map[string]Recipe
	names   []string
}

// CreateIndexMapping creates the Bleve index mapping for recipe documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Name and description are analysed so "iso-date" is found by "date"
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name
	nameField.Store = true
	docMapping.AddFieldMappingsAt(domain.RecipeFieldName, nameField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = standard.Name
	descField.Store = true
	docMapping.AddFieldMappingsAt(domain.RecipeFieldDescription, descField)

	// Tags - keyword, matched exactly
	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = keyword.Name
	tagsField.Store = true
	docMapping.AddFieldMappingsAt(domain.RecipeFieldTags, tagsField)

	// Pattern and flags are stored for display only
	for _, name := range []string{domain.RecipeFieldPattern, domain.RecipeFieldFlags} {
		f := bleve.NewTextFieldMapping()
		f.Index = false
		f.Store = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// NewCatalog indexes recipes in memory. Recipe names are used as document IDs.
func NewCatalog(recipes []Recipe) (*Catalog, error) {
	index, err := bleve.NewMemOnly(CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	c := &Catalog{
		index:   index,
		recipes: make(map[string]Recipe, len(recipes)),
		names:   make([]string, 0, len(recipes)),
	}

	batch := index.NewBatch()
	for _, r := range recipes {
		if _, dup := c.recipes[r.Name]; dup {
			_ = index.Close()
			return nil, fmt.Errorf("duplicate recipe name: %s", r.Name)
		}
		c.recipes[r.Name] = r
		c.names = append(c.names, r.Name)
		if err := batch.Index(r.Name, r.Document()); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index recipe %s: %w", r.Name, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index recipes: %w", err)
	}

	slices.Sort(c.names)
	return c, nil
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Get returns the recipe with the given name.
func (c *Catalog) Get(name string) (Recipe, bool) {
	r, ok := c.recipes[name]
	return r, ok
}

// All returns every recipe sorted by name.
func (c *Catalog) All() []Recipe {
	all := make([]Recipe, 0, len(c.names))
	for _, name := range c.names {
		all = append(all, c.recipes[name])
	}
	return all
}

// Search returns up to limit recipes relevant to q, best first. An empty
// query lists recipes by name.
func (c *Catalog) Search(q string, limit int) ([]Recipe, error) {
	if limit <= 0 {
		limit = len(c.names)
	}

	if strings.TrimSpace(q) == "" {
		all := c.All()
		if len(all) > limit {
			all = all[:limit]
		}
		return all, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	res, err := c.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	found := make([]Recipe, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if r, ok := c.recipes[hit.ID]; ok {
			found = append(found, r)
		}
	}
	return found, nil
}

// buildQuery matches the description with typo tolerance, and boosts hits on
// the recipe name and on exact tags.
func buildQuery(q string) query.Query {
	descQuery := bleve.NewMatchQuery(q)
	descQuery.SetField(domain.RecipeFieldDescription)
	descQuery.SetFuzziness(1)

	nameQuery := bleve.NewMatchQuery(q)
	nameQuery.SetField(domain.RecipeFieldName)
	nameQuery.SetBoost(3.0)

	queries := []query.Query{descQuery, nameQuery}
	for _, word := range strings.Fields(strings.ToLower(q)) {
		tagQuery := bleve.NewTermQuery(word)
		tagQuery.SetField(domain.RecipeFieldTags)
		tagQuery.SetBoost(2.0)
		queries = append(queries, tagQuery)
	}

	return bleve.NewDisjunctionQuery(queries...)
}

// Close releases the index.
func (c *Catalog) Close() error {
	return c.index.Close()
}
