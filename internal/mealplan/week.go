// Package mealplan holds the calendar arithmetic and grouping behind the
// weekly meal plan view. Weeks start on Monday in local time; the backend
// stores plain calendar dates.
package mealplan

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = time.DateOnly

// DaysPerWeek is the number of columns in the plan.
const DaysPerWeek = 7

// Monday returns local midnight of the Monday on or before t.
func Monday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekDays returns the seven days starting at start.
func WeekDays(start time.Time) []time.Time {
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// PrevWeek returns the start of the week before start.
func PrevWeek(start time.Time) time.Time { return start.AddDate(0, 0, -DaysPerWeek) }

// NextWeek returns the start of the week after start.
func NextWeek(start time.Time) time.Time { return start.AddDate(0, 0, DaysPerWeek) }

// ParseLocalDate parses "YYYY-MM-DD" as local noon, which stays on the same
// calendar day across DST shifts.
func ParseLocalDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, errors.Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 12, 0, 0, 0, time.Local), nil
}

// ToAPIDate returns UTC midnight of t's local calendar date.
func ToAPIDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t's local calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatDayHeader formats a column header such as "Mon Jan 2".
func FormatDayHeader(t time.Time) string { return t.Format("Mon Jan 2") }

var mealTypes = []domain.MealType{
	domain.MealBreakfast,
	domain.MealLunch,
	domain.MealDinner,
	domain.MealSnack,
}

// MealTypes returns the meal types in display order.
func MealTypes() []domain.MealType {
	return append([]domain.MealType(nil), mealTypes...)
}

var mealTypeLabels = func() map[domain.MealType]string {
	title := cases.Title(language.English)
	labels := make(map[domain.MealType]string, len(mealTypes))
	for _, mt := range mealTypes {
		labels[mt] = title.String(string(mt))
	}
	return labels
}()

// MealTypeLabel returns the display label for mt. Unknown types are
// title-cased as they are.
func MealTypeLabel(mt domain.MealType) string {
	if label, ok := mealTypeLabels[mt]; ok {
		return label
	}
	return cases.Title(language.English).String(string(mt))
}
