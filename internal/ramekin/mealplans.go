package ramekin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/validation"
)

// ListMealPlans returns plans whose date falls in [start, end]. Dates are
// YYYY-MM-DD; empty bounds are left open.
func (c *Client) ListMealPlans(ctx context.Context, start, end string) ([]domain.MealPlan, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start_date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}

	var out struct {
		MealPlans []domain.MealPlan `json:"meal_plans"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/meal-plans", query: q}, &out); err != nil {
		return nil, err
	}
	return out.MealPlans, nil
}

// CreateMealPlan schedules a recipe and returns the plan id.
func (c *Client) CreateMealPlan(ctx context.Context, in domain.MealPlanInput) (string, error) {
	if err := validation.Validate(in); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/meal-plans", body: in}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// DeleteMealPlan unschedules a plan.
func (c *Client) DeleteMealPlan(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/meal-plans/" + url.PathEscape(id)}, nil)
}
