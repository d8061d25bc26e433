// Package cookbook holds a searchable catalogue of tested regex recipes.
package cookbook

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/sha1n/mcp-regex-workbench/internal/domain"
	"github.com/sha1n/mcp-regex-workbench/internal/regex"
	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var builtinRecipes []byte

// Recipe is a named pattern with the flags it is meant to be used with and
// an example subject it is known to match.
type Recipe struct {
	Name        string   `yaml:"name" json:"name"`
	Pattern     string   `yaml:"pattern" json:"pattern"`
	Flags       string   `yaml:"flags" json:"flags"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Example     string   `yaml:"example" json:"example"`
}

type recipeFile struct {
	Recipes []Recipe `yaml:"recipes"`
}

// Document returns the index representation of the recipe.
func (r Recipe) Document() domain.RecipeDocument {
	return domain.RecipeDocument{
		Name:        r.Name,
		Pattern:     r.Pattern,
		Flags:       r.Flags,
		Description: r.Description,
		Tags:        r.Tags,
	}
}

// Builtin returns the recipes shipped with the binary.
func Builtin() ([]Recipe, error) {
	return Load(builtinRecipes)
}

// LoadFile reads recipes from a YAML file.
func LoadFile(path string) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes file: %w", err)
	}
	recipes, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipes, nil
}

// Load parses and validates a YAML recipe list. Names must be unique, every
// pattern must compile with its flags, and a non-empty example must match.
func Load(data []byte) ([]Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file recipeFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}

	seen := make(map[string]bool, len(file.Recipes))
	for i := range file.Recipes {
		r := &file.Recipes[i]
		r.Name = strings.TrimSpace(r.Name)
		for j, tag := range r.Tags {
			r.Tags[j] = strings.ToLower(strings.TrimSpace(tag))
		}

		if r.Name == "" {
			return nil, fmt.Errorf("recipe #%d has no name", i+1)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate recipe name: %s", r.Name)
		}
		seen[r.Name] = true

		if err := validate(*r); err != nil {
			return nil, fmt.Errorf("recipe %s: %w", r.Name, err)
		}
	}

	return file.Recipes, nil
}

func validate(r Recipe) error {
	p, err := regex.Compile(r.Pattern, r.Flags)
	if err != nil {
		return err
	}
	if r.Example == "" {
		return nil
	}
	matches, err := p.FindAll(r.Example)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return errors.New("pattern does not match its example")
	}
	return nil
}

// Merge returns base with the recipes in overrides added. An override with
// the same name as a base recipe replaces it. The result is sorted by name.
func Merge(base, overrides []Recipe) []Recipe {
	byName := make(map[string]Recipe, len(base)+len(overrides))
	for _, r := range base {
		byName[r.Name] = r
	}
	for _, r := range overrides {
		byName[r.Name] = r
	}

	merged := make([]Recipe, 0, len(byName))
	for _, r := range byName {
		merged = append(merged, r)
	}
	slices.SortFunc(merged, func(a, b Recipe) int {
		return strings.Compare(a.Name, b.Name)
	})
	return merged
}

// Open loads the built-in recipes and, when path is set, merges the recipes
// from that file over them.
func Open(path string) (*Catalog, error) {
	recipes, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in recipes: %w", err)
	}
	if path != "" {
		extra, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		recipes = Merge(recipes, extra)
	}
	return NewCatalog(recipes)
}
