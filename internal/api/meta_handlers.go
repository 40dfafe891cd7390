package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/storage"
	"github.com/marginalia-app/marginalia-server/internal/view"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Meta"},
	}, s.handleHealthCheck)
}

func (s *Server) registerFilterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFilterOptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/filters",
		Summary:     "Get filter options",
		Description: "Returns the categories and tags present in the library, plus suggested tags",
		Tags:        []string{"Meta"},
	}, s.handleGetFilterOptions)
}

func (s *Server) registerDebugRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "resetCollection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/debug/collections/{name}",
		Summary:     "Reset collection",
		Description: "Removes a persisted collection and reloads the owning store empty. Destructive.",
		Tags:        []string{"Debug"},
	}, s.handleResetCollection)
}

// === DTOs ===

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status   string `json:"status" doc:"Always ok when serving"`
	Books    int    `json:"books" doc:"Number of books loaded"`
	Insights int    `json:"insights" doc:"Number of insights loaded"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// FilterOptionsResponse lists the filterable vocabularies.
type FilterOptionsResponse struct {
	Categories    []string `json:"categories" doc:"Categories present in the library"`
	Tags          []string `json:"tags" doc:"Tags present in the library"`
	SuggestedTags []string `json:"suggested_tags" doc:"Advisory tag suggestions"`
}

// FilterOptionsOutput wraps the filter options response for Huma.
type FilterOptionsOutput struct {
	Body FilterOptionsResponse
}

// ResetCollectionInput contains parameters for resetting a collection.
type ResetCollectionInput struct {
	Name string `path:"name" enum:"books,insights" doc:"Collection name"`
}

// ResetCollectionOutput is the empty response for a reset.
type ResetCollectionOutput struct {
	Status int
}

// === Handlers ===

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: HealthResponse{
			Status:   "ok",
			Books:    s.library.Books().Len(),
			Insights: s.library.Insights().Len(),
		},
	}, nil
}

func (s *Server) handleGetFilterOptions(_ context.Context, _ *struct{}) (*FilterOptionsOutput, error) {
	joined := s.views.InsightsWithBooks(s.library.Insights(), s.library.Books())

	categories := view.UniqueCategories(joined)
	categoryNames := make([]string, len(categories))
	for i, c := range categories {
		categoryNames[i] = string(c)
	}

	return &FilterOptionsOutput{
		Body: FilterOptionsResponse{
			Categories:    categoryNames,
			Tags:          view.UniqueTags(joined),
			SuggestedTags: domain.SuggestedTags,
		},
	}, nil
}

func (s *Server) handleResetCollection(ctx context.Context, input *ResetCollectionInput) (*ResetCollectionOutput, error) {
	if err := s.library.ResetCollection(ctx, storage.Collection(input.Name)); err != nil {
		return nil, err
	}
	s.logger.Warn("collection reset", "collection", input.Name)
	return &ResetCollectionOutput{Status: http.StatusNoContent}, nil
}
