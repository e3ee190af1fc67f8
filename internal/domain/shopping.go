package domain

import "time"

// ShoppingItem is one line on the shopping list.
type ShoppingItem struct {
	ID                string    `json:"id"`
	Item              string    `json:"item"`
	Amount            *string   `json:"amount,omitempty"`
	Note              *string   `json:"note,omitempty"`
	SourceRecipeID    *string   `json:"source_recipe_id,omitempty"`
	SourceRecipeTitle *string   `json:"source_recipe_title,omitempty"`
	IsChecked         bool      `json:"is_checked"`
	SortOrder         int       `json:"sort_order"`
	Version           int       `json:"version"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ShoppingItemInput is the body for adding an item.
type ShoppingItemInput struct {
	Item              string  `json:"item" validate:"notblank"`
	Amount            *string `json:"amount,omitempty"`
	Note              *string `json:"note,omitempty"`
	SourceRecipeID    *string `json:"source_recipe_id,omitempty"`
	SourceRecipeTitle *string `json:"source_recipe_title,omitempty"`
	ClientID          *string `json:"client_id,omitempty"`
}

// ShoppingItemUpdate is a partial update; nil fields are left unchanged.
type ShoppingItemUpdate struct {
	Item      *string `json:"item,omitempty"`
	Amount    *string `json:"amount,omitempty"`
	Note      *string `json:"note,omitempty"`
	IsChecked *bool   `json:"is_checked,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

// ShoppingItemsFromIngredients builds shopping list inputs for the chosen
// ingredients of a recipe, using each ingredient's primary measurement.
func ShoppingItemsFromIngredients(recipe *Recipe, ingredients []Ingredient) []ShoppingItemInput {
	items := make([]ShoppingItemInput, 0, len(ingredients))
	for _, ing := range ingredients {
		primary := ing.Primary()
		amount := OptionalString(joinNonEmpty(Deref(primary.Amount), Deref(primary.Unit)))
		items = append(items, ShoppingItemInput{
			Item:              ing.Item,
			Amount:            amount,
			Note:              ing.Note,
			SourceRecipeID:    Str(recipe.ID),
			SourceRecipeTitle: Str(recipe.Title),
		})
	}
	return items
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
