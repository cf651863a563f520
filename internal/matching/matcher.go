// Package matching turns free-text subscription names into stable slugs and
// ranks the provider catalog against partial queries. Everything here is a
// pure function over its inputs: no I/O, no shared state, safe to call from
// any goroutine on every keystroke.
package matching

import (
	"regexp"
	"sort"
	"strings"

	"subtrackr/internal/models"
)

const (
	// MinQueryLength is the shortest query Search will scan the catalog for.
	// Single-character queries match too much to be useful as suggestions.
	MinQueryLength = 2

	// MaxResults caps the number of suggestions returned by Search.
	MaxResults = 5
)

// Match scores, in strict priority order. The first rule that applies wins;
// an entry that satisfies none of them is excluded from results entirely.
const (
	ScoreExactName     = 120 // trimmed query equals display name (case-insensitive)
	ScoreExactSlug     = 100 // normalized query equals slug
	ScoreSlugPrefix    = 80  // slug starts with normalized query
	ScoreNamePrefix    = 70  // normalized display name starts with normalized query
	ScoreNameSubstring = 50  // display name contains trimmed query (case-insensitive)
	ScoreSlugSubstring = 40  // slug contains normalized query
)

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// MatchResult is a catalog entry annotated with its score for one query.
// Results are ephemeral and never persisted.
type MatchResult struct {
	Provider models.Provider `json:"provider"`
	Score    int             `json:"score"`
}

// Normalize derives the canonical slug for a name: trimmed, lowercased, with
// every run of characters outside [a-z0-9] collapsed to a single dash and no
// leading or trailing dash. An empty or all-symbol input yields an empty
// string, which callers must treat as "no match possible".
func Normalize(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonAlphanumericRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// FindExactMatch silently resolves a typed name to a catalog entry, used on
// save so the user never has to pick from a list for well-known services.
// Slug equality wins over display-name equality. Returns nil when the query
// is empty, the catalog is empty, or nothing matches exactly.
func FindExactMatch(catalog []models.Provider, query string) *models.Provider {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len(catalog) == 0 {
		return nil
	}

	slug := Normalize(query)
	if slug != "" {
		for i := range catalog {
			if catalog[i].Slug == slug {
				return &catalog[i]
			}
		}
	}

	for i := range catalog {
		if strings.EqualFold(catalog[i].DisplayName, trimmed) {
			return &catalog[i]
		}
	}

	return nil
}

// Search ranks the catalog against a partial query for live autocomplete.
// Queries shorter than MinQueryLength produce no results. Scoring follows
// the priority table above; ties keep catalog order, and the result is
// truncated to MaxResults entries.
func Search(catalog []models.Provider, query string) []MatchResult {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < MinQueryLength {
		return nil
	}

	slug := Normalize(query)
	lowered := strings.ToLower(trimmed)

	results := make([]MatchResult, 0, len(catalog))
	for _, entry := range catalog {
		score := scoreEntry(entry, trimmed, lowered, slug)
		if score == 0 {
			continue
		}
		results = append(results, MatchResult{Provider: entry, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	return results
}

func scoreEntry(entry models.Provider, trimmed, lowered, slug string) int {
	if strings.EqualFold(entry.DisplayName, trimmed) {
		return ScoreExactName
	}

	if slug == "" {
		return 0
	}

	nameSlug := Normalize(entry.DisplayName)

	switch {
	case entry.Slug == slug:
		return ScoreExactSlug
	case strings.HasPrefix(entry.Slug, slug):
		return ScoreSlugPrefix
	case strings.HasPrefix(nameSlug, slug):
		return ScoreNamePrefix
	case strings.Contains(strings.ToLower(entry.DisplayName), lowered):
		return ScoreNameSubstring
	case strings.Contains(entry.Slug, slug):
		return ScoreSlugSubstring
	}

	return 0
}
