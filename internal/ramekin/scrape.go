package ramekin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
)

type captureRequest struct {
	HTML      string `json:"html"`
	SourceURL string `json:"source_url"`
}

// CreateCapture submits a page snapshot for extraction and returns the new job.
func (c *Client) CreateCapture(ctx context.Context, html, sourceURL string) (*domain.ScrapeJob, error) {
	var job domain.ScrapeJob
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/scrape/capture",
		body:   captureRequest{HTML: html, SourceURL: sourceURL},
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateScrape asks the backend to fetch and extract rawURL itself.
func (c *Client) CreateScrape(ctx context.Context, rawURL string) (*domain.ScrapeJob, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Validationf("%q is not an http(s) URL", rawURL)
	}

	var job domain.ScrapeJob
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/scrape",
		body:   map[string]string{"url": rawURL},
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetScrape fetches the current state of a scrape job.
func (c *Client) GetScrape(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}

	var job domain.ScrapeJob
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/scrape/" + id}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// RetryScrape restarts a failed job the backend marked retryable.
func (c *Client) RetryScrape(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}

	var job domain.ScrapeJob
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/scrape/" + id + "/retry"}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func validateJobID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Validationf("invalid job id %q", id)
	}
	return nil
}
