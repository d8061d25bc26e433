package domain

// RecipeDocument is a regex recipe as stored in the cookbook's search index.
type RecipeDocument struct {
	// Name is the unique recipe identifier, e.g. "iso-date".
	Name string `json:"name"`

	// Pattern is the pattern source in JavaScript syntax.
	Pattern string `json:"pattern"`

	// Flags are the recommended flags, e.g. "g" or "gi".
	Flags string `json:"flags"`

	// Description explains what the recipe matches.
	Description string `json:"description"`

	// Tags are short keywords used to find the recipe.
	Tags []string `json:"tags"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	RecipeFieldName        = "name"
	RecipeFieldPattern     = "pattern"
	RecipeFieldFlags       = "flags"
	RecipeFieldDescription = "description"
	RecipeFieldTags        = "tags"
)
