package view

import (
	"strings"

	"github.com/marginalia-app/marginalia-server/internal/domain"
)

// Filter describes the composable insight filters. Zero values are
// pass-throughs: an empty query, category set, or tag set filters nothing.
type Filter struct {
	// Query is matched case-insensitively as a substring across book title,
	// author, location, excerpt, note, tags, and category.
	Query      string
	Categories []domain.Category
	Tags       []string
}

// FilterInsights applies the filter stages in order: free-text query, then
// category membership, then tag intersection.
func FilterInsights(insights []domain.InsightWithBook, f Filter) []domain.InsightWithBook {
	filtered := filterByQuery(insights, f.Query)
	filtered = filterByCategories(filtered, f.Categories)
	return filterByTags(filtered, f.Tags)
}

func filterByQuery(insights []domain.InsightWithBook, query string) []domain.InsightWithBook {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return insights
	}

	out := make([]domain.InsightWithBook, 0, len(insights))
	for _, ins := range insights {
		if strings.Contains(searchableContent(&ins), query) {
			out = append(out, ins)
		}
	}
	return out
}

// searchableContent joins the searchable fields into one lowercase haystack,
// the same shape the mobile filter box matches against.
func searchableContent(ins *domain.InsightWithBook) string {
	parts := make([]string, 0, 6+len(ins.Tags))
	parts = append(parts,
		ins.Book.Title,
		ins.Book.Author,
		ins.Location,
		ins.Excerpt,
		ins.Note,
	)
	parts = append(parts, ins.Tags...)
	parts = append(parts, string(ins.Category))
	return strings.ToLower(strings.Join(parts, " "))
}

func filterByCategories(insights []domain.InsightWithBook, categories []domain.Category) []domain.InsightWithBook {
	if len(categories) == 0 {
		return insights
	}

	wanted := make(map[domain.Category]struct{}, len(categories))
	for _, c := range categories {
		wanted[c] = struct{}{}
	}

	out := make([]domain.InsightWithBook, 0, len(insights))
	for _, ins := range insights {
		if _, ok := wanted[ins.Category]; ok {
			out = append(out, ins)
		}
	}
	return out
}

func filterByTags(insights []domain.InsightWithBook, tags []string) []domain.InsightWithBook {
	if len(tags) == 0 {
		return insights
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}

	out := make([]domain.InsightWithBook, 0, len(insights))
	for _, ins := range insights {
		for _, t := range ins.Tags {
			if _, ok := wanted[t]; ok {
				out = append(out, ins)
				break
			}
		}
	}
	return out
}

// Limit truncates the list to the first n items. Non-positive n returns the
// list unchanged; it is a truncation for "recent" previews, not another sort.
func Limit[T any](list []T, n int) []T {
	if n <= 0 || n >= len(list) {
		return list
	}
	return list[:n]
}

// UniqueCategories returns the distinct categories present, in first-seen order.
func UniqueCategories(insights []domain.InsightWithBook) []domain.Category {
	seen := make(map[domain.Category]struct{})
	out := make([]domain.Category, 0, 4)
	for _, ins := range insights {
		if _, ok := seen[ins.Category]; !ok {
			seen[ins.Category] = struct{}{}
			out = append(out, ins.Category)
		}
	}
	return out
}

// UniqueTags returns the distinct tags present, in first-seen order.
func UniqueTags(insights []domain.InsightWithBook) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ins := range insights {
		for _, t := range ins.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}

// Truncate shortens text to at most max runes, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
