// Package ingredients models an editable, section-grouped ingredient list.
//
// The list is a plain ordered slice addressed by index; there is no stable
// ingredient id. Sections exist only as labels on ingredients, so a section
// "group" is a contiguous run of equal labels. Every operation returns a new
// slice and never mutates its input.
package ingredients

import "github.com/ramekin/ramekin-web/internal/domain"

// SectionGroup is a contiguous run of ingredients sharing a section label.
// Section is nil for the unlabeled run. StartIndex is the position of the
// group's first ingredient in the flat list.
type SectionGroup struct {
	Section     *string
	Ingredients []domain.Ingredient
	StartIndex  int
}

// Name returns the group's label, or "" for the unlabeled group.
func (g SectionGroup) Name() string {
	return domain.Deref(g.Section)
}

// GroupBySection partitions list into contiguous runs of equal section labels.
// Non-adjacent runs with the same label stay separate groups. Concatenating
// the groups' ingredients in order yields list.
func GroupBySection(list []domain.Ingredient) []SectionGroup {
	groups := []SectionGroup{}
	for i, ing := range list {
		if n := len(groups); n > 0 && sameSection(groups[n-1].Section, ing.Section) {
			groups[n-1].Ingredients = append(groups[n-1].Ingredients, ing)
			continue
		}
		groups = append(groups, SectionGroup{
			Section:     ing.Section,
			Ingredients: []domain.Ingredient{ing},
			StartIndex:  i,
		})
	}
	return groups
}

// Flatten concatenates the groups back into a single list.
func Flatten(groups []SectionGroup) []domain.Ingredient {
	var out []domain.Ingredient
	for _, g := range groups {
		out = append(out, g.Ingredients...)
	}
	return out
}

// SectionAt returns the section label of the ingredient at index, for use as
// the target section of a drop onto that position.
func SectionAt(list []domain.Ingredient, index int) *string {
	mustIndex(list, index, "index")
	return list[index].Section
}

// Sections returns the distinct section labels in first-appearance order.
func Sections(list []domain.Ingredient) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ing := range list {
		if ing.Section == nil || seen[*ing.Section] {
			continue
		}
		seen[*ing.Section] = true
		out = append(out, *ing.Section)
	}
	return out
}

func sameSection(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
