package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ramekin/ramekin-web/internal/domain"
	domainerrors "github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/store"
)

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCaptures",
		Method:      http.MethodGet,
		Path:        "/api/captures",
		Summary:     "List captures",
		Description: "Returns recent capture attempts made through this relay, newest first",
		Tags:        []string{"History"},
	}, s.handleListCaptures)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCaptureForRecipe",
		Method:      http.MethodGet,
		Path:        "/api/captures/recipe/{recipe_id}",
		Summary:     "Find capture by recipe",
		Description: "Returns the capture that produced a recipe",
		Tags:        []string{"History"},
	}, s.handleGetCaptureForRecipe)
}

// ListCapturesInput contains parameters for listing captures.
type ListCapturesInput struct {
	Limit  int    `query:"limit" default:"20" minimum:"1" maximum:"200" doc:"Maximum number of captures"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListCapturesOutput wraps the capture list for Huma.
type ListCapturesOutput struct {
	Body struct {
		Captures   []domain.CaptureRecord `json:"captures" doc:"Capture records"`
		NextCursor string                 `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
		HasMore    bool                   `json:"has_more" doc:"Whether more captures follow"`
	}
}

// CaptureForRecipeInput addresses a recipe.
type CaptureForRecipeInput struct {
	RecipeID string `path:"recipe_id" doc:"Recipe ID"`
}

// CaptureOutput wraps one capture record for Huma.
type CaptureOutput struct {
	Body domain.CaptureRecord
}

func (s *Server) handleListCaptures(ctx context.Context, input *ListCapturesInput) (*ListCapturesOutput, error) {
	if s.store == nil {
		return nil, domainerrors.Internal("capture history is not available")
	}
	page, err := s.store.ListCaptures(ctx, store.PageParams{Limit: input.Limit, Cursor: input.Cursor})
	if err != nil {
		return nil, err
	}

	out := &ListCapturesOutput{}
	out.Body.Captures = page.Items
	out.Body.NextCursor = page.NextCursor
	out.Body.HasMore = page.HasMore
	return out, nil
}

func (s *Server) handleGetCaptureForRecipe(ctx context.Context, input *CaptureForRecipeInput) (*CaptureOutput, error) {
	if s.store == nil {
		return nil, domainerrors.Internal("capture history is not available")
	}
	rec, err := s.store.CaptureForRecipe(ctx, input.RecipeID)
	if err != nil {
		return nil, err
	}
	return &CaptureOutput{Body: *rec}, nil
}
