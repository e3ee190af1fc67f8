package ingredients

import (
	"fmt"
	"slices"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/validation"
)

// ErrLastMeasurement is returned when a removal would leave an ingredient
// without any measurement.
var ErrLastMeasurement = errors.Validation("an ingredient must keep at least one measurement")

// Move removes the ingredient at from, sets its section to targetSection and
// inserts it at to. The destination index is interpreted against the list
// with the element already removed, as a splice-based move would.
// Out-of-range indices panic.
func Move(list []domain.Ingredient, from, to int, targetSection *string) []domain.Ingredient {
	mustIndex(list, from, "from")
	mustIndex(list, to, "to")

	out := domain.CloneIngredients(list)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	moved.Section = cloneSection(targetSection)
	return slices.Insert(out, to, moved)
}

// MoveToSlot moves the ingredient at from onto the slot currently occupied by
// to, inheriting that occupant's section.
func MoveToSlot(list []domain.Ingredient, from, to int) []domain.Ingredient {
	return Move(list, from, to, SectionAt(list, to))
}

// Add appends an empty ingredient with no section.
func Add(list []domain.Ingredient) []domain.Ingredient {
	return append(domain.CloneIngredients(list), domain.NewIngredient())
}

// AddWithSection appends an empty ingredient labeled sectionName. A blank
// name yields an unlabeled ingredient. The new row always goes to the end of
// the whole list, not the end of the named section's run.
func AddWithSection(list []domain.Ingredient, sectionName string) []domain.Ingredient {
	ing := domain.NewIngredient()
	ing.Section = domain.OptionalString(sectionName)
	return append(domain.CloneIngredients(list), ing)
}

// Remove deletes the ingredient at index.
func Remove(list []domain.Ingredient, index int) []domain.Ingredient {
	mustIndex(list, index, "index")
	return slices.Delete(domain.CloneIngredients(list), index, index+1)
}

// SetItem replaces the item name of the ingredient at index.
func SetItem(list []domain.Ingredient, index int, item string) []domain.Ingredient {
	return update(list, index, func(ing *domain.Ingredient) {
		ing.Item = item
	})
}

// SetNote replaces the note; blank input clears it.
func SetNote(list []domain.Ingredient, index int, note string) []domain.Ingredient {
	return update(list, index, func(ing *domain.Ingredient) {
		ing.Note = domain.OptionalString(note)
	})
}

// SetSection relabels the ingredient at index; blank input clears the label.
func SetSection(list []domain.Ingredient, index int, section string) []domain.Ingredient {
	return update(list, index, func(ing *domain.Ingredient) {
		ing.Section = domain.OptionalString(section)
	})
}

// RenameSection relabels every ingredient in the contiguous group starting at
// startIndex. Other runs carrying the same label are left alone.
func RenameSection(list []domain.Ingredient, startIndex int, name string) []domain.Ingredient {
	mustIndex(list, startIndex, "startIndex")

	out := domain.CloneIngredients(list)
	label := list[startIndex].Section
	next := domain.OptionalString(name)
	for i := startIndex; i < len(out) && sameSection(list[i].Section, label); i++ {
		out[i].Section = cloneSection(next)
	}
	return out
}

// AddAlternativeMeasurement appends an empty measurement to the ingredient at index.
func AddAlternativeMeasurement(list []domain.Ingredient, index int) []domain.Ingredient {
	return update(list, index, func(ing *domain.Ingredient) {
		ing.Measurements = append(ing.Measurements, domain.Measurement{})
	})
}

// RemoveMeasurement deletes one measurement from the ingredient at index.
// Removing the primary promotes the next measurement. Removing the only
// remaining measurement returns ErrLastMeasurement and the list unchanged.
func RemoveMeasurement(list []domain.Ingredient, index, measurement int) ([]domain.Ingredient, error) {
	mustIndex(list, index, "index")
	ms := list[index].Measurements
	if measurement < 0 || measurement >= len(ms) {
		panic(fmt.Sprintf("ingredients: measurement index %d out of range [0,%d)", measurement, len(ms)))
	}
	if len(ms) == 1 {
		return list, ErrLastMeasurement
	}

	return update(list, index, func(ing *domain.Ingredient) {
		ing.Measurements = slices.Delete(ing.Measurements, measurement, measurement+1)
	}), nil
}

// SetAmount writes a measurement's amount. Blank input is stored as absent.
func SetAmount(list []domain.Ingredient, index, measurement int, amount string) []domain.Ingredient {
	return updateMeasurement(list, index, measurement, func(m *domain.Measurement) {
		m.Amount = domain.OptionalString(amount)
	})
}

// SetUnit writes a measurement's unit. Blank input is stored as absent.
func SetUnit(list []domain.Ingredient, index, measurement int, unit string) []domain.Ingredient {
	return updateMeasurement(list, index, measurement, func(m *domain.Measurement) {
		m.Unit = domain.OptionalString(unit)
	})
}

// Compact drops ingredients whose item is blank, as the form does on save.
func Compact(list []domain.Ingredient) []domain.Ingredient {
	out := make([]domain.Ingredient, 0, len(list))
	for _, ing := range list {
		if domain.OptionalString(ing.Item) == nil {
			continue
		}
		out = append(out, ing.Clone())
	}
	return out
}

func update(list []domain.Ingredient, index int, fn func(*domain.Ingredient)) []domain.Ingredient {
	mustIndex(list, index, "index")
	out := domain.CloneIngredients(list)
	fn(&out[index])
	return out
}

func updateMeasurement(list []domain.Ingredient, index, measurement int, fn func(*domain.Measurement)) []domain.Ingredient {
	return update(list, index, func(ing *domain.Ingredient) {
		if measurement < 0 || measurement >= len(ing.Measurements) {
			panic(fmt.Sprintf("ingredients: measurement index %d out of range [0,%d)", measurement, len(ing.Measurements)))
		}
		fn(&ing.Measurements[measurement])
	})
}

func mustIndex(list []domain.Ingredient, index int, name string) {
	if index < 0 || index >= len(list) {
		panic(fmt.Sprintf("ingredients: %s index %d out of range [0,%d)", name, index, len(list)))
	}
}

func cloneSection(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Validate checks every ingredient for a non-blank item and at least one
// measurement. Failures name fields like "ingredients[1].item".
func Validate(list []domain.Ingredient) error {
	return validation.Validate(ingredientList{Ingredients: list})
}

type ingredientList struct {
	Ingredients []domain.Ingredient `json:"ingredients" validate:"dive"`
}
