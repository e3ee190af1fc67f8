package recipediff

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/domain"
)

func TestWords(t *testing.T) {
	parts := Words("Bake for 20 minutes at 180C.", "Bake for 25 minutes at 180C until golden.")

	assert.Equal(t, []Part{
		{Value: "Bake for "},
		{Value: "20", Removed: true},
		{Value: "25", Added: true},
		{Value: " minutes at 180C"},
		{Value: " until golden", Added: true},
		{Value: "."},
	}, parts)
}

func TestWords_NeverSplitsWords(t *testing.T) {
	parts := Words("simmer gently", "stir gently")

	assert.Len(t, parts, 3)
	assert.Contains(t, parts, Part{Value: "simmer", Removed: true})
	assert.Contains(t, parts, Part{Value: "stir", Added: true})
}

func TestWords_Reconstructs(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"", "new text"},
		{"old text", ""},
		{"same", "same"},
		{"2 cups flour\n1 tsp salt", "2 1/2 cups flour\n1 tsp sea salt\n1 egg"},
		{"crème brûlée, très bien", "crème caramel, très bien!"},
		{"  leading   spaces", "leading spaces  "},
	}

	for _, p := range pairs {
		oldText, newText := Texts(Words(p[0], p[1]))
		assert.Equal(t, p[0], oldText)
		assert.Equal(t, p[1], newText)
	}
}

func TestWords_ManyDistinctTokens(t *testing.T) {
	var a, b strings.Builder
	for i := range 60000 {
		a.WriteString("w")
		a.WriteString(strings.Repeat("x", i%7))
		a.WriteString(string(rune('a' + i%26)))
		a.WriteString(strconv.Itoa(i))
		a.WriteString(" ")
	}
	b.WriteString(a.String())
	b.WriteString("tail")

	oldText, newText := Texts(Words(a.String(), b.String()))
	require.Equal(t, a.String(), oldText)
	require.Equal(t, b.String(), newText)
}

func TestFormatIngredients(t *testing.T) {
	ings := []domain.Ingredient{
		{Item: "flour", Measurements: []domain.Measurement{{Amount: domain.Str("2"), Unit: domain.Str("cups")}}},
		{Item: "eggs", Measurements: []domain.Measurement{{Amount: domain.Str("3")}}, Note: domain.Str("beaten")},
		{Item: "salt", Measurements: []domain.Measurement{{}}},
	}

	assert.Equal(t, "2 cups flour\n3 eggs (beaten)\nsalt", FormatIngredients(ings))
	assert.Equal(t, "", FormatIngredients(nil))
}

func TestFormatTags(t *testing.T) {
	assert.Equal(t, "quick, vegan", FormatTags([]string{"quick", "vegan"}))
	assert.Equal(t, "", FormatTags(nil))
}

func TestCompare(t *testing.T) {
	a := &domain.Recipe{
		Title:        "Pancakes",
		Instructions: "Mix and fry.",
		Tags:         []string{"breakfast"},
		PrepTime:     domain.Str("10 min"),
		Ingredients: []domain.Ingredient{
			{Item: "flour", Measurements: []domain.Measurement{{Amount: domain.Str("1"), Unit: domain.Str("cup")}}},
		},
	}
	b := &domain.Recipe{
		Title:        "Pancakes",
		Instructions: "Mix, rest and fry.",
		Tags:         []string{"breakfast", "quick"},
		PrepTime:     domain.Str("10 min"),
		Notes:        domain.Str(""),
		Ingredients: []domain.Ingredient{
			{Item: "flour", Measurements: []domain.Measurement{{Amount: domain.Str("1"), Unit: domain.Str("cup")}}},
		},
	}

	changes := Compare(a, b)
	require.Len(t, changes, 2)
	assert.Equal(t, "instructions", changes[0].Field)
	assert.Equal(t, "Instructions", changes[0].Label)
	assert.Equal(t, "tags", changes[1].Field)
	assert.Equal(t, "breakfast, quick", changes[1].New)

	assert.True(t, HasChanges(a, b))
	assert.False(t, HasChanges(a, a))
	assert.Nil(t, Compare(nil, b))
}
