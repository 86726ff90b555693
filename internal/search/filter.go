// Package search implements in-memory filtering for the public recipe feed.
package search

import (
	"sort"
	"strings"

	"larder/internal/models"
)

// MatchesText reports whether the recipe matches a free-text query. Matching
// is a case-insensitive substring check against the title or description.
// An empty query matches everything.
func MatchesText(r *models.Recipe, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(r.DescriptionText()), q)
}

// MatchesTags reports whether the recipe carries every selected tag. Tag
// comparison is exact and case-sensitive. An empty selection matches
// everything.
func MatchesTags(r *models.Recipe, selected []string) bool {
	for _, want := range selected {
		found := false
		for _, have := range r.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Filter returns the recipes matching both the text query and the tag
// selection, preserving input order.
func Filter(recipes []*models.Recipe, query string, tags []string) []*models.Recipe {
	out := make([]*models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if MatchesText(r, query) && MatchesTags(r, tags) {
			out = append(out, r)
		}
	}
	return out
}

// CollectTags returns the distinct tags across all recipes, sorted
// alphabetically.
func CollectTags(recipes []*models.Recipe) []string {
	seen := make(map[string]struct{})
	for _, r := range recipes {
		for _, tag := range r.Tags {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
