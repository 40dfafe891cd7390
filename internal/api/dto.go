package api

import (
	"time"

	"github.com/marginalia-app/marginalia-server/internal/domain"
)

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID          string    `json:"id" doc:"Book ID"`
	Title       string    `json:"title" doc:"Book title"`
	Author      string    `json:"author" doc:"Book author"`
	CoverURL    string    `json:"cover_url,omitempty" doc:"Cover image URL"`
	Description string    `json:"description,omitempty" doc:"Book description"`
	PublishedOn string    `json:"published_on,omitempty" doc:"Publication date"`
	ISBN        string    `json:"isbn,omitempty" doc:"ISBN"`
	PageCount   int       `json:"page_count,omitempty" doc:"Number of pages"`
	Language    string    `json:"language,omitempty" doc:"Language"`
	Publisher   string    `json:"publisher,omitempty" doc:"Publisher"`
	Genres      []string  `json:"genres,omitempty" doc:"Genres"`
	Rating      float64   `json:"rating,omitempty" doc:"Personal rating"`
	URL         string    `json:"url,omitempty" doc:"Reference URL"`
	Notes       string    `json:"notes,omitempty" doc:"Personal notes"`
	LastReadOn  string    `json:"last_read_on,omitempty" doc:"Last read date"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		PublishedOn: b.PublishedOn,
		ISBN:        b.ISBN,
		PageCount:   b.PageCount,
		Language:    b.Language,
		Publisher:   b.Publisher,
		Genres:      b.Genres,
		Rating:      b.Rating,
		URL:         b.URL,
		Notes:       b.Notes,
		LastReadOn:  b.LastReadOn,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// InsightResponse contains insight data in API responses.
type InsightResponse struct {
	ID        string    `json:"id" doc:"Insight ID"`
	BookID    string    `json:"book_id" doc:"Owning book ID"`
	Category  string    `json:"category" doc:"Insight category"`
	Location  string    `json:"location,omitempty" doc:"Page/chapter reference"`
	Tags      []string  `json:"tags" doc:"Free-form tags"`
	Excerpt   string    `json:"excerpt,omitempty" doc:"Quoted text"`
	Note      string    `json:"note,omitempty" doc:"User reflection"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toInsightResponse(ins *domain.Insight) InsightResponse {
	return InsightResponse{
		ID:        ins.ID,
		BookID:    ins.BookID,
		Category:  string(ins.Category),
		Location:  ins.Location,
		Tags:      ins.Tags,
		Excerpt:   ins.Excerpt,
		Note:      ins.Note,
		CreatedAt: ins.CreatedAt,
		UpdatedAt: ins.UpdatedAt,
	}
}

// InsightWithBookResponse is an insight joined with its owning book.
type InsightWithBookResponse struct {
	InsightResponse
	Book BookResponse `json:"book" doc:"Owning book (placeholder when orphaned)"`
}

func toInsightWithBookResponse(iwb *domain.InsightWithBook) InsightWithBookResponse {
	return InsightWithBookResponse{
		InsightResponse: toInsightResponse(&iwb.Insight),
		Book:            toBookResponse(&iwb.Book),
	}
}

// BookWithInsightsResponse is a book joined with its insights and stats.
type BookWithInsightsResponse struct {
	BookResponse
	Insights     []InsightResponse `json:"insights" doc:"Insights for this book, newest first"`
	InsightCount int               `json:"insight_count" doc:"Number of insights"`
	LastUpdated  time.Time         `json:"last_updated" doc:"Most recent insight activity"`
}

func toBookWithInsightsResponse(bwi *domain.BookWithInsights) BookWithInsightsResponse {
	insights := make([]InsightResponse, len(bwi.Insights))
	for i := range bwi.Insights {
		insights[i] = toInsightResponse(&bwi.Insights[i])
	}
	return BookWithInsightsResponse{
		BookResponse: toBookResponse(&bwi.Book),
		Insights:     insights,
		InsightCount: bwi.InsightCount,
		LastUpdated:  bwi.LastUpdated,
	}
}
