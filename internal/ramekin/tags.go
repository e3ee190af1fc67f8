package ramekin

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
)

// ListTags returns the user's tags.
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var out struct {
		Tags []domain.Tag `json:"tags"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/tags"}, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// CreateTag adds a tag.
func (c *Client) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("tag name is required")
	}

	var tag domain.Tag
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/tags", body: map[string]string{"name": name}}, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// RenameTag renames a tag everywhere it is used.
func (c *Client) RenameTag(ctx context.Context, id, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("tag name is required")
	}

	var tag domain.Tag
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/tags/" + url.PathEscape(id),
		body:   map[string]string{"name": name},
	}, &tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/tags/" + url.PathEscape(id)}, nil)
}
