// Package domain defines the recipe-manager types shared by every other package.
// Field names and JSON tags follow the Ramekin backend's wire format.
package domain

import "strings"

// Measurement is one (amount, unit) pair for an ingredient.
// Absent values are nil, never the empty string.
type Measurement struct {
	Amount *string `json:"amount,omitempty"`
	Unit   *string `json:"unit,omitempty"`
}

// IsEmpty reports whether neither amount nor unit is set.
func (m Measurement) IsEmpty() bool {
	return m.Amount == nil && m.Unit == nil
}

// Ingredient is one recipe component. Measurements[0] is the primary
// measurement; alternatives follow it.
type Ingredient struct {
	Item         string        `json:"item" validate:"notblank"`
	Measurements []Measurement `json:"measurements" validate:"min=1"`
	Note         *string       `json:"note,omitempty"`
	Raw          *string       `json:"raw,omitempty"`
	Section      *string       `json:"section,omitempty"`
}

// NewIngredient returns an ingredient with an empty item and a single empty measurement.
func NewIngredient() Ingredient {
	return Ingredient{Measurements: []Measurement{{}}}
}

// Primary returns the first measurement, or the zero value when there is none.
func (i Ingredient) Primary() Measurement {
	if len(i.Measurements) == 0 {
		return Measurement{}
	}
	return i.Measurements[0]
}

// SectionName returns the section label, or "" when the ingredient has none.
func (i Ingredient) SectionName() string {
	if i.Section == nil {
		return ""
	}
	return *i.Section
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (i Ingredient) Clone() Ingredient {
	out := i
	out.Note = clonePtr(i.Note)
	out.Raw = clonePtr(i.Raw)
	out.Section = clonePtr(i.Section)
	if i.Measurements != nil {
		out.Measurements = make([]Measurement, len(i.Measurements))
		for k, m := range i.Measurements {
			out.Measurements[k] = Measurement{Amount: clonePtr(m.Amount), Unit: clonePtr(m.Unit)}
		}
	}
	return out
}

// CloneIngredients deep-copies a list of ingredients.
func CloneIngredients(list []Ingredient) []Ingredient {
	if list == nil {
		return nil
	}
	out := make([]Ingredient, len(list))
	for k, ing := range list {
		out[k] = ing.Clone()
	}
	return out
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
