package domain

import (
	"encoding/json"
	"testing"
)

func TestRecipeDocument_JSONFieldNames(t *testing.T) {
	doc := RecipeDocument{
		Name:        "iso-date",
		Pattern:     `(?<year>\d{4})-(?<month>\d{2})-(?<day>\d{2})`,
		Flags:       "g",
		Description: "ISO 8601 calendar date",
		Tags:        []string{"date", "iso"},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal RecipeDocument: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	// Index mappings and queries address fields by these names.
	for _, name := range []string{
		RecipeFieldName,
		RecipeFieldPattern,
		RecipeFieldFlags,
		RecipeFieldDescription,
		RecipeFieldTags,
	} {
		if _, ok := fields[name]; !ok {
			t.Errorf("Expected JSON field %q, got %v", name, fields)
		}
	}
	if fields[RecipeFieldName] != "iso-date" {
		t.Errorf("Unexpected name: %v", fields[RecipeFieldName])
	}
}
