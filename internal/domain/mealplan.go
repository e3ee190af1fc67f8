package domain

// MealType is the slot a planned meal occupies in a day.
type MealType string

// Meal types in display order.
const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealPlan is one recipe scheduled for a date and meal type.
// MealDate is a calendar date formatted YYYY-MM-DD.
type MealPlan struct {
	ID               string   `json:"id"`
	RecipeID         string   `json:"recipe_id"`
	RecipeTitle      string   `json:"recipe_title"`
	ThumbnailPhotoID *string  `json:"thumbnail_photo_id,omitempty"`
	MealDate         string   `json:"meal_date"`
	MealType         MealType `json:"meal_type"`
	Notes            *string  `json:"notes,omitempty"`
}

// MealPlanInput is the body for scheduling a recipe.
type MealPlanInput struct {
	RecipeID string   `json:"recipe_id" validate:"required,uuid"`
	MealDate string   `json:"meal_date" validate:"required,datetime=2006-01-02"`
	MealType MealType `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Notes    *string  `json:"notes,omitempty"`
}
