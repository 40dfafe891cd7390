package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginalia-app/marginalia-server/internal/domain"
)

func joinedInsight(id string, category domain.Category, note string, tags ...string) domain.InsightWithBook {
	ins := domain.Insight{
		Category: category,
		Note:     note,
		Tags:     tags,
	}
	ins.ID = id
	return domain.InsightWithBook{
		Insight: ins,
		Book:    domain.Book{Title: "Dune", Author: "Frank Herbert"},
	}
}

func idsOf(insights []domain.InsightWithBook) []string {
	out := make([]string, len(insights))
	for i, ins := range insights {
		out[i] = ins.ID
	}
	return out
}

// TestFilterInsights_Empty tests that a zero filter passes everything through
func TestFilterInsights_Empty(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryThought, "one"),
		joinedInsight("b", domain.CategoryQuote, "two"),
	}

	got := FilterInsights(input, Filter{})
	assert.Equal(t, idsOf(input), idsOf(got))
}

// TestFilterInsights_Query tests the case-insensitive substring query
func TestFilterInsights_Query(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryThought, "the spice must flow"),
		joinedInsight("b", domain.CategoryThought, "something else"),
	}

	got := FilterInsights(input, Filter{Query: "SPICE"})
	assert.Equal(t, []string{"a"}, idsOf(got))

	// The query also matches book fields.
	got = FilterInsights(input, Filter{Query: "herbert"})
	assert.Equal(t, []string{"a", "b"}, idsOf(got))

	// And tags.
	tagged := []domain.InsightWithBook{joinedInsight("c", domain.CategoryIdea, "note", "work")}
	got = FilterInsights(tagged, Filter{Query: "work"})
	assert.Equal(t, []string{"c"}, idsOf(got))

	got = FilterInsights(input, Filter{Query: "nowhere"})
	assert.Empty(t, got)
}

// TestFilterInsights_Categories tests category membership filtering
func TestFilterInsights_Categories(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryThought, "one"),
		joinedInsight("b", domain.CategoryQuote, "two"),
		joinedInsight("c", domain.CategoryIdea, "three"),
	}

	got := FilterInsights(input, Filter{Categories: []domain.Category{domain.CategoryQuote, domain.CategoryIdea}})
	assert.Equal(t, []string{"b", "c"}, idsOf(got))
}

// TestFilterInsights_Tags tests that any shared tag is a match
func TestFilterInsights_Tags(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryThought, "one", "work", "finance"),
		joinedInsight("b", domain.CategoryThought, "two", "family"),
		joinedInsight("c", domain.CategoryThought, "three"),
	}

	got := FilterInsights(input, Filter{Tags: []string{"finance", "family"}})
	assert.Equal(t, []string{"a", "b"}, idsOf(got))
}

// TestFilterInsights_Composed tests that the stages intersect
func TestFilterInsights_Composed(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryThought, "the spice must flow", "work"),
		joinedInsight("b", domain.CategoryThought, "the spice must flow", "family"),
		joinedInsight("c", domain.CategoryQuote, "unrelated", "work"),
	}

	got := FilterInsights(input, Filter{
		Query:      "spice",
		Categories: []domain.Category{domain.CategoryThought},
		Tags:       []string{"work"},
	})
	assert.Equal(t, []string{"a"}, idsOf(got))
}

// TestLimit tests the preview truncation
func TestLimit(t *testing.T) {
	list := []string{"a", "b", "c"}

	assert.Len(t, Limit(list, 2), 2)
	assert.Equal(t, list, Limit(list, 0))
	assert.Equal(t, list, Limit(list, -1))
	assert.Equal(t, list, Limit(list, 3))
	assert.Equal(t, list, Limit(list, 10))
}

// TestUniqueCategories tests first-seen-order deduplication
func TestUniqueCategories(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryQuote, "one"),
		joinedInsight("b", domain.CategoryThought, "two"),
		joinedInsight("c", domain.CategoryQuote, "three"),
	}

	got := UniqueCategories(input)
	assert.Equal(t, []domain.Category{domain.CategoryQuote, domain.CategoryThought}, got)
}

// TestUniqueTags tests first-seen-order deduplication across insights
func TestUniqueTags(t *testing.T) {
	input := []domain.InsightWithBook{
		joinedInsight("a", domain.CategoryThought, "one", "work", "family"),
		joinedInsight("b", domain.CategoryThought, "two", "family", "health"),
	}

	got := UniqueTags(input)
	assert.Equal(t, []string{"work", "family", "health"}, got)

	assert.Empty(t, UniqueTags(nil))
}

// TestTruncate tests rune-safe truncation
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "héllo", Truncate("héllo", 5))

	cut := Truncate("héllo wörld", 6)
	require.Equal(t, "héllo ...", cut)

	// Non-positive max disables truncation.
	assert.Equal(t, "anything", Truncate("anything", 0))
}
