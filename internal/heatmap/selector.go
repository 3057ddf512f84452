package heatmap

import (
	"strings"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

// CompositeSeparator joins the two category names of a pairwise selector
const CompositeSeparator = "_"

// ValidateCategoryName rejects names that cannot be addressed unambiguously
// by a selector
func ValidateCategoryName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return invalid("category", "name must not be empty")
	case name == models.SelectorAll:
		return invalid("category", "name %q is reserved", name)
	case strings.Contains(name, CompositeSeparator):
		return invalid("category", "name %q must not contain %q", name, CompositeSeparator)
	}
	return nil
}

// ResolveCategories turns a selector (or an explicit category list) into the
// concrete categories to score, validated against the schema names.
func ResolveCategories(schema []string, selector string, explicit []string) ([]string, error) {
	known := make(map[string]bool, len(schema))
	ambiguous := false
	for _, name := range schema {
		known[name] = true
		if strings.Contains(name, CompositeSeparator) {
			ambiguous = true
		}
	}

	if len(explicit) > 0 {
		seen := make(map[string]bool, len(explicit))
		out := make([]string, 0, len(explicit))
		for _, name := range explicit {
			if !known[name] {
				return nil, invalid("categories", "unknown category %q", name)
			}
			if seen[name] {
				return nil, invalid("categories", "duplicate category %q", name)
			}
			seen[name] = true
			out = append(out, name)
		}
		return out, nil
	}

	if selector == "" || selector == models.SelectorAll {
		if len(schema) == 0 {
			return nil, invalid("categoryType", "schema has no categories")
		}
		return append([]string(nil), schema...), nil
	}

	if known[selector] && !strings.Contains(selector, CompositeSeparator) {
		return []string{selector}, nil
	}

	if !strings.Contains(selector, CompositeSeparator) {
		return nil, invalid("categoryType", "unknown category %q", selector)
	}
	if ambiguous {
		return nil, invalid("categoryType", "composite %q is ambiguous: schema has category names containing %q", selector, CompositeSeparator)
	}

	parts := strings.Split(selector, CompositeSeparator)
	if len(parts) != 2 {
		return nil, invalid("categoryType", "composite %q must join exactly two categories", selector)
	}
	if parts[0] == parts[1] {
		return nil, invalid("categoryType", "composite %q repeats a category", selector)
	}
	for _, p := range parts {
		if !known[p] {
			return nil, invalid("categoryType", "unknown category %q", p)
		}
	}
	return parts, nil
}

// Selectors lists every valid selector for a schema: "all", each category,
// then every unordered pair in schema order
func Selectors(schema []string) []models.SelectorOption {
	options := []models.SelectorOption{{Value: models.SelectorAll, Label: "All"}}
	for _, name := range schema {
		options = append(options, models.SelectorOption{Value: name, Label: name})
	}
	for i, a := range schema {
		for _, b := range schema[i+1:] {
			options = append(options, models.SelectorOption{
				Value: a + CompositeSeparator + b,
				Label: a + " + " + b,
			})
		}
	}
	return options
}
