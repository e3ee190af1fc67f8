package ingredients

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramekin/ramekin-web/internal/domain"
)

func ing(item string, section *string) domain.Ingredient {
	return domain.Ingredient{Item: item, Section: section, Measurements: []domain.Measurement{{}}}
}

func items(list []domain.Ingredient) []string {
	out := make([]string, len(list))
	for i, l := range list {
		out[i] = l.Item
	}
	return out
}

func TestGroupBySection_Empty(t *testing.T) {
	assert.Equal(t, []SectionGroup{}, GroupBySection(nil))
	assert.Empty(t, GroupBySection([]domain.Ingredient{}))
}

func TestGroupBySection_AllUnlabeled(t *testing.T) {
	groups := GroupBySection([]domain.Ingredient{ing("salt", nil), ing("pepper", nil)})

	require.Len(t, groups, 1)
	assert.Nil(t, groups[0].Section)
	assert.Equal(t, []string{"salt", "pepper"}, items(groups[0].Ingredients))
	assert.Equal(t, 0, groups[0].StartIndex)
}

func TestGroupBySection_NonAdjacentRunsStaySeparate(t *testing.T) {
	sauce := domain.Str("Sauce")
	list := []domain.Ingredient{
		ing("A", sauce),
		ing("B", domain.Str("Sauce")),
		ing("C", nil),
		ing("D", domain.Str("Sauce")),
	}

	groups := GroupBySection(list)

	require.Len(t, groups, 3)
	assert.Equal(t, "Sauce", groups[0].Name())
	assert.Equal(t, []string{"A", "B"}, items(groups[0].Ingredients))
	assert.Equal(t, 0, groups[0].StartIndex)

	assert.Nil(t, groups[1].Section)
	assert.Equal(t, []string{"C"}, items(groups[1].Ingredients))
	assert.Equal(t, 2, groups[1].StartIndex)

	assert.Equal(t, "Sauce", groups[2].Name())
	assert.Equal(t, []string{"D"}, items(groups[2].Ingredients))
	assert.Equal(t, 3, groups[2].StartIndex)
}

func TestGroupBySection_CaseSensitiveLabels(t *testing.T) {
	groups := GroupBySection([]domain.Ingredient{ing("a", domain.Str("Sauce")), ing("b", domain.Str("sauce"))})
	assert.Len(t, groups, 2)
}

func TestGroupBySection_RoundTrip(t *testing.T) {
	labels := []*string{nil, domain.Str("Dough"), domain.Str("Filling"), domain.Str("Glaze")}
	rng := rand.New(rand.NewPCG(7, 11))

	for n := 0; n < 200; n++ {
		size := rng.IntN(12)
		list := make([]domain.Ingredient, size)
		for i := range list {
			list[i] = ing(string(rune('a'+i)), labels[rng.IntN(len(labels))])
		}

		groups := GroupBySection(list)

		total := 0
		for k, g := range groups {
			assert.Equal(t, total, g.StartIndex)
			assert.NotEmpty(t, g.Ingredients)
			if k > 0 {
				assert.False(t, sameSection(groups[k-1].Section, g.Section), "adjacent groups must differ")
			}
			total += len(g.Ingredients)
		}
		assert.Equal(t, len(list), total)

		flat := Flatten(groups)
		if size == 0 {
			assert.Empty(t, flat)
			continue
		}
		assert.Equal(t, list, flat)
	}
}

func TestSections_FirstAppearanceOrder(t *testing.T) {
	list := []domain.Ingredient{
		ing("a", domain.Str("Glaze")),
		ing("b", nil),
		ing("c", domain.Str("Cake")),
		ing("d", domain.Str("Glaze")),
	}
	assert.Equal(t, []string{"Glaze", "Cake"}, Sections(list))
}
