package ramekin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/validation"
)

// ListShoppingItems returns the shopping list in sort order.
func (c *Client) ListShoppingItems(ctx context.Context) ([]domain.ShoppingItem, error) {
	var out struct {
		Items []domain.ShoppingItem `json:"items"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/shopping-list"}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateShoppingItems adds items and returns their ids in input order.
func (c *Client) CreateShoppingItems(ctx context.Context, items []domain.ShoppingItemInput) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	for _, item := range items {
		if err := validation.Validate(item); err != nil {
			return nil, err
		}
	}

	var out struct {
		IDs []string `json:"ids"`
	}
	body := map[string]any{"items": items}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/shopping-list", body: body}, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// UpdateShoppingItem applies a partial update.
func (c *Client) UpdateShoppingItem(ctx context.Context, id string, update domain.ShoppingItemUpdate) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/api/shopping-list/" + url.PathEscape(id), body: update}, nil)
}

// DeleteShoppingItem removes one item.
func (c *Client) DeleteShoppingItem(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/shopping-list/" + url.PathEscape(id)}, nil)
}

// ClearChecked removes every checked item and returns how many were deleted.
func (c *Client) ClearChecked(ctx context.Context) (int, error) {
	var out struct {
		DeletedCount int `json:"deleted_count"`
	}
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/api/shopping-list/clear-checked"}, &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}
