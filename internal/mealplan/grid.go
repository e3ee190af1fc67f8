package mealplan

import (
	"time"

	"github.com/ramekin/ramekin-web/internal/domain"
)

type slot struct {
	date     string
	mealType domain.MealType
}

// Grid groups a week's meal plans by day and meal type.
type Grid struct {
	days  []time.Time
	cells map[slot][]domain.MealPlan
}

// NewGrid lays out plans over the week starting at weekStart. Plans outside
// the week are dropped.
func NewGrid(weekStart time.Time, plans []domain.MealPlan) *Grid {
	g := &Grid{
		days:  WeekDays(weekStart),
		cells: make(map[slot][]domain.MealPlan),
	}

	inWeek := make(map[string]bool, DaysPerWeek)
	for _, d := range g.days {
		inWeek[FormatDate(d)] = true
	}

	for _, p := range plans {
		date := planDate(p)
		if !inWeek[date] {
			continue
		}
		key := slot{date: date, mealType: p.MealType}
		g.cells[key] = append(g.cells[key], p)
	}
	return g
}

// Days returns the week's days in order.
func (g *Grid) Days() []time.Time { return g.days }

// Meals returns the plans for one cell.
func (g *Grid) Meals(day time.Time, mt domain.MealType) []domain.MealPlan {
	return g.cells[slot{date: FormatDate(day), mealType: mt}]
}

// Range returns the API dates bounding the week, inclusive.
func (g *Grid) Range() (start, end string) {
	return FormatDate(ToAPIDate(g.days[0])), FormatDate(ToAPIDate(g.days[len(g.days)-1]))
}

// Len returns the number of plans placed on the grid.
func (g *Grid) Len() int {
	n := 0
	for _, plans := range g.cells {
		n += len(plans)
	}
	return n
}

// planDate normalizes MealDate, which some backends send as a timestamp.
func planDate(p domain.MealPlan) string {
	if len(p.MealDate) > len(DateLayout) {
		return p.MealDate[:len(DateLayout)]
	}
	return p.MealDate
}
