package domain

import "strings"

// Placeholder values substituted when an insight's book cannot be resolved.
const (
	UnknownBookTitle  = "Unknown Book"
	UnknownBookAuthor = "Unknown Author"
)

// Book represents a work referenced by one or more insights.
// Identity is the opaque ID; (title, author) uniqueness is enforced by
// find-before-create, not a hard constraint.
type Book struct {
	Entity
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Description string   `json:"description,omitempty"`
	PublishedOn string   `json:"published_on,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
	Language    string   `json:"language,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	URL         string   `json:"url,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	LastReadOn  string   `json:"last_read_on,omitempty"`
}

// NormalizeBookKey lowercases and trims a title or author for matching.
func NormalizeBookKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchesTitleAuthor reports whether this book matches the given title and
// author, case-insensitively and ignoring surrounding whitespace.
func (b *Book) MatchesTitleAuthor(title, author string) bool {
	return NormalizeBookKey(b.Title) == NormalizeBookKey(title) &&
		NormalizeBookKey(b.Author) == NormalizeBookKey(author)
}

// PlaceholderBookFor builds the stand-in book for an orphaned insight.
// It carries the insight's own timestamps so joined views stay sortable.
func PlaceholderBookFor(ins *Insight) Book {
	return Book{
		Entity: Entity{
			ID:        ins.BookID,
			CreatedAt: ins.CreatedAt,
			UpdatedAt: ins.UpdatedAt,
		},
		Title:  UnknownBookTitle,
		Author: UnknownBookAuthor,
	}
}

// BookUpdate describes a partial update to a book. Nil fields are left
// unchanged. ID and timestamps are not updatable; UpdatedAt is bumped by the
// store on every update, even an empty one.
type BookUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Author      *string   `json:"author,omitempty"`
	CoverURL    *string   `json:"cover_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	PublishedOn *string   `json:"published_on,omitempty"`
	ISBN        *string   `json:"isbn,omitempty"`
	PageCount   *int      `json:"page_count,omitempty"`
	Language    *string   `json:"language,omitempty"`
	Publisher   *string   `json:"publisher,omitempty"`
	Genres      *[]string `json:"genres,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	LastReadOn  *string   `json:"last_read_on,omitempty"`
}

// Apply merges the non-nil fields onto the book.
func (u *BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = strings.TrimSpace(*u.Title)
	}
	if u.Author != nil {
		b.Author = strings.TrimSpace(*u.Author)
	}
	if u.CoverURL != nil {
		b.CoverURL = *u.CoverURL
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.PublishedOn != nil {
		b.PublishedOn = *u.PublishedOn
	}
	if u.ISBN != nil {
		b.ISBN = *u.ISBN
	}
	if u.PageCount != nil {
		b.PageCount = *u.PageCount
	}
	if u.Language != nil {
		b.Language = *u.Language
	}
	if u.Publisher != nil {
		b.Publisher = *u.Publisher
	}
	if u.Genres != nil {
		b.Genres = *u.Genres
	}
	if u.Rating != nil {
		b.Rating = *u.Rating
	}
	if u.URL != nil {
		b.URL = *u.URL
	}
	if u.Notes != nil {
		b.Notes = *u.Notes
	}
	if u.LastReadOn != nil {
		b.LastReadOn = *u.LastReadOn
	}
}
