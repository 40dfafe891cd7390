package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMatchesTitleAuthor tests the normalized matching used by find-or-create
func TestMatchesTitleAuthor(t *testing.T) {
	book := Book{Title: "Dune", Author: "Frank Herbert"}

	assert.True(t, book.MatchesTitleAuthor("Dune", "Frank Herbert"))
	assert.True(t, book.MatchesTitleAuthor("  dune ", "FRANK HERBERT"))
	assert.False(t, book.MatchesTitleAuthor("Dune", "Brian Herbert"))
	assert.False(t, book.MatchesTitleAuthor("Dune Messiah", "Frank Herbert"))
}

// TestNormalizeBookKey tests the lowercase-and-trim normalization
func TestNormalizeBookKey(t *testing.T) {
	assert.Equal(t, "dune", NormalizeBookKey("  DuNe  "))
	assert.Equal(t, "", NormalizeBookKey("   "))
}

// TestPlaceholderBookFor tests the stand-in built for orphaned insights
func TestPlaceholderBookFor(t *testing.T) {
	ins := Insight{BookID: "book-gone", Category: CategoryThought, Note: "n"}
	ins.ID = "ins-1"
	ins.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ins.UpdatedAt = ins.CreatedAt.Add(time.Hour)

	placeholder := PlaceholderBookFor(&ins)

	assert.Equal(t, UnknownBookTitle, placeholder.Title)
	assert.Equal(t, UnknownBookAuthor, placeholder.Author)
	assert.Equal(t, "book-gone", placeholder.ID)
	assert.Equal(t, ins.CreatedAt, placeholder.CreatedAt)
	assert.Equal(t, ins.UpdatedAt, placeholder.UpdatedAt)
}

// TestBookUpdate_Apply tests partial merging with trimming
func TestBookUpdate_Apply(t *testing.T) {
	book := Book{Title: "Dune", Author: "Frank Herbert", PageCount: 412}

	title := "  Dune Messiah "
	rating := 4.0
	genres := []string{"science fiction"}
	update := BookUpdate{Title: &title, Rating: &rating, Genres: &genres}
	update.Apply(&book)

	assert.Equal(t, "Dune Messiah", book.Title)
	assert.Equal(t, 4.0, book.Rating)
	assert.Equal(t, genres, book.Genres)
	// Nil fields survive.
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, 412, book.PageCount)
}

// TestEntity_Timestamps tests Touch and InitTimestamps
func TestEntity_Timestamps(t *testing.T) {
	var e Entity
	e.InitTimestamps()

	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	time.Sleep(5 * time.Millisecond)
	e.Touch()

	assert.True(t, e.UpdatedAt.After(e.CreatedAt))
}
