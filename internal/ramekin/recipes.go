package ramekin

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/validation"
)

// ListParams selects a page of recipes.
type ListParams struct {
	Limit   int
	Offset  int
	Query   string
	SortBy  string // updated_at or random
	SortDir string // asc or desc
}

// Pagination describes the page returned by ListRecipes.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// RecipePage is one page of recipe summaries.
type RecipePage struct {
	Recipes    []domain.RecipeSummary `json:"recipes"`
	Pagination Pagination             `json:"pagination"`
}

// ListRecipes returns a page of the user's recipes.
func (c *Client) ListRecipes(ctx context.Context, p ListParams) (*RecipePage, error) {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.SortDir != "" {
		q.Set("sort_dir", p.SortDir)
	}

	var page RecipePage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/recipes", query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRecipe fetches the current version of a recipe.
func (c *Client) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return c.GetVersion(ctx, id, "")
}

// GetVersion fetches a specific version of a recipe. An empty versionID
// returns the current version.
func (c *Client) GetVersion(ctx context.Context, id, versionID string) (*domain.Recipe, error) {
	var q url.Values
	if versionID != "" {
		q = url.Values{"version_id": {versionID}}
	}

	var recipe domain.Recipe
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/recipes/" + url.PathEscape(id), query: q}, &recipe)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListVersions returns a recipe's history, newest first.
func (c *Client) ListVersions(ctx context.Context, id string) ([]domain.RecipeVersion, error) {
	var out struct {
		Versions []domain.RecipeVersion `json:"versions"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/recipes/" + url.PathEscape(id) + "/versions"}, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

// CreateRecipe validates and stores a new recipe, returning its id.
func (c *Client) CreateRecipe(ctx context.Context, in domain.RecipeInput) (string, error) {
	if err := validation.Validate(in); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/recipes", body: in}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateRecipe replaces a recipe's content, creating a new version.
func (c *Client) UpdateRecipe(ctx context.Context, id string, in domain.RecipeInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodPut, path: "/api/recipes/" + url.PathEscape(id), body: in}, nil)
}

// DeleteRecipe removes a recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/recipes/" + url.PathEscape(id)}, nil)
}

type customEnrichRequest struct {
	Recipe      domain.RecipeInput `json:"recipe"`
	Instruction string             `json:"instruction"`
}

// Enrich returns the recipe with AI-suggested tags merged in. Nothing is saved.
func (c *Client) Enrich(ctx context.Context, in domain.RecipeInput) (*domain.RecipeInput, error) {
	var out domain.RecipeInput
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/enrich", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrichCustom applies a free-text instruction to the recipe. Nothing is saved.
func (c *Client) EnrichCustom(ctx context.Context, in domain.RecipeInput, instruction string) (*domain.RecipeInput, error) {
	var out domain.RecipeInput
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/enrich/custom",
		body:   customEnrichRequest{Recipe: in, Instruction: instruction},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
