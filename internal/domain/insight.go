package domain

import "github.com/marginalia-app/marginalia-server/internal/errors"

// Category discriminates the kind of insight and which content field is required.
type Category string

// Insight categories.
const (
	CategoryThought  Category = "thought"
	CategoryQuestion Category = "question"
	CategoryIdea     Category = "idea"
	CategoryQuote    Category = "quote"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryThought, CategoryQuestion, CategoryIdea, CategoryQuote:
		return true
	}
	return false
}

// IsQuote reports whether this category requires an excerpt.
// All other categories are reflections and require a note instead.
func (c Category) IsQuote() bool {
	return c == CategoryQuote
}

// SuggestedTags are the soft-typed tag suggestions offered by clients.
// Tags remain free-form strings; this list is advisory only.
var SuggestedTags = []string{
	"personal", "work", "family", "health", "finance", "relationship",
}

// Insight is a single captured note tied to a book.
//
// The category acts as a discriminant: a quote carries a required Excerpt
// (the quoted text) and an optional Note, while thought/idea/question carry a
// required Note (the user's reflection) and an optional Excerpt. Validate
// enforces this contract; the stores trust it has been checked at the boundary.
type Insight struct {
	Entity
	BookID   string   `json:"book_id"`
	Category Category `json:"category"`
	Location string   `json:"location,omitempty"`
	Tags     []string `json:"tags"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// Validate checks the discriminated-union contract.
func (i *Insight) Validate() error {
	if i.BookID == "" {
		return errors.Validation("insight is missing book_id")
	}
	if !i.Category.Valid() {
		return errors.Validationf("unknown insight category %q", i.Category)
	}
	if i.Category.IsQuote() {
		if i.Excerpt == "" {
			return errors.Validation("quote insights require an excerpt")
		}
	} else if i.Note == "" {
		return errors.Validationf("%s insights require a note", i.Category)
	}
	return nil
}

// InsightUpdate describes a partial update to an insight. Nil fields are left
// unchanged. BookID is deliberately absent: the owning book is immutable after
// creation (changing it would require index surgery the store does not support).
type InsightUpdate struct {
	Category *Category `json:"category,omitempty"`
	Location *string   `json:"location,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Excerpt  *string   `json:"excerpt,omitempty"`
	Note     *string   `json:"note,omitempty"`
}

// Apply merges the non-nil fields onto the insight.
func (u *InsightUpdate) Apply(ins *Insight) {
	if u.Category != nil {
		ins.Category = *u.Category
	}
	if u.Location != nil {
		ins.Location = *u.Location
	}
	if u.Tags != nil {
		ins.Tags = *u.Tags
	}
	if u.Excerpt != nil {
		ins.Excerpt = *u.Excerpt
	}
	if u.Note != nil {
		ins.Note = *u.Note
	}
}
