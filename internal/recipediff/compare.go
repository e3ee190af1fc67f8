package recipediff

import (
	"strings"

	"github.com/ramekin/ramekin-web/internal/domain"
)

// FieldChange is one recipe field that differs between two versions.
type FieldChange struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Old   string `json:"old"`
	New   string `json:"new"`
	Parts []Part `json:"parts"`
}

type field struct {
	name  string
	label string
	text  func(*domain.Recipe) string
}

// Fields in display order.
var fields = []field{
	{"title", "Title", func(r *domain.Recipe) string { return r.Title }},
	{"description", "Description", func(r *domain.Recipe) string { return deref(r.Description) }},
	{"ingredients", "Ingredients", func(r *domain.Recipe) string { return FormatIngredients(r.Ingredients) }},
	{"instructions", "Instructions", func(r *domain.Recipe) string { return r.Instructions }},
	{"tags", "Tags", func(r *domain.Recipe) string { return FormatTags(r.Tags) }},
	{"notes", "Notes", func(r *domain.Recipe) string { return deref(r.Notes) }},
	{"prep_time", "Prep Time", func(r *domain.Recipe) string { return deref(r.PrepTime) }},
	{"cook_time", "Cook Time", func(r *domain.Recipe) string { return deref(r.CookTime) }},
	{"total_time", "Total Time", func(r *domain.Recipe) string { return deref(r.TotalTime) }},
	{"servings", "Servings", func(r *domain.Recipe) string { return deref(r.Servings) }},
	{"difficulty", "Difficulty", func(r *domain.Recipe) string { return deref(r.Difficulty) }},
	{"nutritional_info", "Nutritional Info", func(r *domain.Recipe) string { return deref(r.NutritionalInfo) }},
	{"source_name", "Source Name", func(r *domain.Recipe) string { return deref(r.SourceName) }},
	{"source_url", "Source URL", func(r *domain.Recipe) string { return deref(r.SourceURL) }},
}

// Compare lists the fields that differ from a to b. Unset and empty values
// compare equal.
func Compare(a, b *domain.Recipe) []FieldChange {
	if a == nil || b == nil {
		return nil
	}
	var changes []FieldChange
	for _, f := range fields {
		oldText, newText := f.text(a), f.text(b)
		if oldText == newText {
			continue
		}
		changes = append(changes, FieldChange{
			Field: f.name,
			Label: f.label,
			Old:   oldText,
			New:   newText,
			Parts: Words(oldText, newText),
		})
	}
	return changes
}

// HasChanges reports whether any compared field differs.
func HasChanges(a, b *domain.Recipe) bool {
	return len(Compare(a, b)) > 0
}

// FormatIngredients renders one ingredient per line as
// "amount unit item (note)", using the primary measurement.
func FormatIngredients(ingredients []domain.Ingredient) string {
	lines := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		m := ing.Primary()
		var words []string
		for _, s := range []string{deref(m.Amount), deref(m.Unit), ing.Item} {
			if s != "" {
				words = append(words, s)
			}
		}
		if note := deref(ing.Note); note != "" {
			words = append(words, "("+note+")")
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}

// FormatTags renders tags as a comma-separated list.
func FormatTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
