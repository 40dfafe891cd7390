package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/view"
)

func (s *Server) registerInsightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listInsights",
		Method:      http.MethodGet,
		Path:        "/api/v1/insights",
		Summary:     "List insights",
		Description: "Returns insights joined with their books, filtered and sorted newest first",
		Tags:        []string{"Insights"},
	}, s.handleListInsights)

	huma.Register(s.api, huma.Operation{
		OperationID: "addInsight",
		Method:      http.MethodPost,
		Path:        "/api/v1/insights",
		Summary:     "Add insight",
		Description: "Adds an insight, resolving or creating the book when title and author are given",
		Tags:        []string{"Insights"},
	}, s.handleAddInsight)

	huma.Register(s.api, huma.Operation{
		OperationID: "getInsight",
		Method:      http.MethodGet,
		Path:        "/api/v1/insights/{id}",
		Summary:     "Get insight",
		Description: "Returns an insight by ID",
		Tags:        []string{"Insights"},
	}, s.handleGetInsight)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateInsight",
		Method:      http.MethodPatch,
		Path:        "/api/v1/insights/{id}",
		Summary:     "Update insight",
		Description: "Applies a partial update; the owning book cannot be changed",
		Tags:        []string{"Insights"},
	}, s.handleUpdateInsight)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteInsight",
		Method:      http.MethodDelete,
		Path:        "/api/v1/insights/{id}",
		Summary:     "Delete insight",
		Description: "Deletes an insight (idempotent) and touches the owning book",
		Tags:        []string{"Insights"},
	}, s.handleDeleteInsight)
}

// === DTOs ===

// ListInsightsInput contains the composable filter parameters.
type ListInsightsInput struct {
	Query      string   `query:"q" doc:"Free-text query over book, location, content, and tags"`
	Categories []string `query:"categories" doc:"Category filter (any match)"`
	Tags       []string `query:"tags" doc:"Tag filter (at least one shared tag)"`
	Limit      int      `query:"limit" doc:"Truncate to the first N insights (0 = all)"`
}

// ListInsightsResponse contains insights joined with their books.
type ListInsightsResponse struct {
	Insights []InsightWithBookResponse `json:"insights" doc:"Insights sorted newest first"`
	Total    int                       `json:"total" doc:"Count after filtering, before limit"`
}

// ListInsightsOutput wraps the list insights response for Huma.
type ListInsightsOutput struct {
	Body ListInsightsResponse
}

// AddInsightRequest is the request body for adding an insight. Either book_id
// or a title (plus optional author) must be provided; the latter goes through
// find-or-create.
type AddInsightRequest struct {
	BookID   string   `json:"book_id,omitempty" doc:"Owning book ID"`
	Title    string   `json:"title,omitempty" validate:"omitempty,max=500" doc:"Book title for find-or-create"`
	Author   string   `json:"author,omitempty" validate:"omitempty,max=500" doc:"Book author for find-or-create"`
	Category string   `json:"category" validate:"required,oneof=thought question idea quote" doc:"Insight category"`
	Location string   `json:"location,omitempty" validate:"omitempty,max=200" doc:"Page/chapter reference"`
	Tags     []string `json:"tags,omitempty" doc:"Free-form tags"`
	Excerpt  string   `json:"excerpt,omitempty" doc:"Quoted text (required for quotes)"`
	Note     string   `json:"note,omitempty" doc:"User reflection (required for non-quotes)"`
}

// AddInsightInput wraps the add insight request for Huma.
type AddInsightInput struct {
	Body AddInsightRequest
}

// InsightOutput wraps a single insight response for Huma.
type InsightOutput struct {
	Body InsightResponse
}

// GetInsightInput contains parameters for getting an insight.
type GetInsightInput struct {
	ID string `path:"id" doc:"Insight ID"`
}

// UpdateInsightInput wraps the update insight request for Huma.
type UpdateInsightInput struct {
	ID     string `path:"id" doc:"Insight ID"`
	BookID string `query:"book_id" doc:"Owning book ID, used for the book touch"`
	Body   domain.InsightUpdate
}

// DeleteInsightInput contains parameters for deleting an insight.
type DeleteInsightInput struct {
	ID     string `path:"id" doc:"Insight ID"`
	BookID string `query:"book_id" doc:"Owning book ID, touched after deletion"`
}

// DeleteInsightOutput is the empty response for a delete.
type DeleteInsightOutput struct {
	Status int
}

// === Handlers ===

func (s *Server) handleListInsights(_ context.Context, input *ListInsightsInput) (*ListInsightsOutput, error) {
	joined := s.views.InsightsWithBooks(s.library.Insights(), s.library.Books())

	categories := make([]domain.Category, len(input.Categories))
	for i, c := range input.Categories {
		categories[i] = domain.Category(c)
	}

	filtered := view.FilterInsights(joined, view.Filter{
		Query:      input.Query,
		Categories: categories,
		Tags:       input.Tags,
	})
	total := len(filtered)
	filtered = view.Limit(filtered, input.Limit)

	resp := make([]InsightWithBookResponse, len(filtered))
	for i := range filtered {
		resp[i] = toInsightWithBookResponse(&filtered[i])
	}
	return &ListInsightsOutput{Body: ListInsightsResponse{Insights: resp, Total: total}}, nil
}

func (s *Server) handleAddInsight(ctx context.Context, input *AddInsightInput) (*InsightOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	bookID := input.Body.BookID
	if bookID == "" {
		book, err := s.library.FindOrCreateBook(ctx, input.Body.Title, input.Body.Author)
		if err != nil {
			return nil, err
		}
		bookID = book.ID
	}

	ins, err := s.library.AddInsight(ctx, domain.Insight{
		BookID:   bookID,
		Category: domain.Category(input.Body.Category),
		Location: input.Body.Location,
		Tags:     dedupeTags(input.Body.Tags),
		Excerpt:  input.Body.Excerpt,
		Note:     input.Body.Note,
	})
	if err != nil {
		return nil, err
	}
	return &InsightOutput{Body: toInsightResponse(ins)}, nil
}

func (s *Server) handleGetInsight(_ context.Context, input *GetInsightInput) (*InsightOutput, error) {
	ins, err := s.library.GetInsight(input.ID)
	if err != nil {
		return nil, err
	}
	return &InsightOutput{Body: toInsightResponse(ins)}, nil
}

func (s *Server) handleUpdateInsight(ctx context.Context, input *UpdateInsightInput) (*InsightOutput, error) {
	ins, err := s.library.UpdateInsight(ctx, input.ID, input.Body, input.BookID)
	if err != nil {
		return nil, err
	}
	return &InsightOutput{Body: toInsightResponse(ins)}, nil
}

func (s *Server) handleDeleteInsight(ctx context.Context, input *DeleteInsightInput) (*DeleteInsightOutput, error) {
	if err := s.library.DeleteInsight(ctx, input.ID, input.BookID); err != nil {
		return nil, err
	}
	return &DeleteInsightOutput{Status: http.StatusNoContent}, nil
}

// dedupeTags drops empty and duplicate tags while preserving order.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
