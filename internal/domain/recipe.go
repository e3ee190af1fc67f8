package domain

import "time"

// VersionSource names what produced a recipe version.
type VersionSource string

// Version sources reported by the backend.
const (
	VersionSourceUser    VersionSource = "user"
	VersionSourceScrape  VersionSource = "scrape"
	VersionSourceEnrich  VersionSource = "enrich"
	VersionSourceImport  VersionSource = "import"
	VersionSourceCapture VersionSource = "capture"
)

// Recipe is the full recipe as returned by GET /api/recipes/{id}.
type Recipe struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     *string       `json:"description,omitempty"`
	Ingredients     []Ingredient  `json:"ingredients"`
	Instructions    string        `json:"instructions"`
	SourceURL       *string       `json:"source_url,omitempty"`
	SourceName      *string       `json:"source_name,omitempty"`
	PhotoIDs        []string      `json:"photo_ids"`
	Tags            []string      `json:"tags"`
	Servings        *string       `json:"servings,omitempty"`
	PrepTime        *string       `json:"prep_time,omitempty"`
	CookTime        *string       `json:"cook_time,omitempty"`
	TotalTime       *string       `json:"total_time,omitempty"`
	Rating          *int          `json:"rating,omitempty"`
	Difficulty      *string       `json:"difficulty,omitempty"`
	NutritionalInfo *string       `json:"nutritional_info,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	VersionID       string        `json:"version_id,omitempty"`
	VersionSource   VersionSource `json:"version_source,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// RecipeSummary is a recipe list entry.
type RecipeSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	Tags             []string  `json:"tags"`
	ThumbnailPhotoID *string   `json:"thumbnail_photo_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RecipeVersion summarizes one entry in a recipe's history.
type RecipeVersion struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	VersionSource VersionSource `json:"version_source"`
	CreatedAt     time.Time     `json:"created_at"`
	IsCurrent     bool          `json:"is_current"`
}

// RecipeInput is the body for creating or replacing a recipe.
type RecipeInput struct {
	Title           string       `json:"title" validate:"notblank"`
	Description     *string      `json:"description,omitempty"`
	Ingredients     []Ingredient `json:"ingredients" validate:"dive"`
	Instructions    string       `json:"instructions"`
	SourceURL       *string      `json:"source_url,omitempty" validate:"omitempty,url"`
	SourceName      *string      `json:"source_name,omitempty"`
	PhotoIDs        []string     `json:"photo_ids,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Servings        *string      `json:"servings,omitempty"`
	PrepTime        *string      `json:"prep_time,omitempty"`
	CookTime        *string      `json:"cook_time,omitempty"`
	TotalTime       *string      `json:"total_time,omitempty"`
	Rating          *int         `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Difficulty      *string      `json:"difficulty,omitempty"`
	NutritionalInfo *string      `json:"nutritional_info,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
}

// Input converts a fetched recipe into an editable input.
func (r *Recipe) Input() RecipeInput {
	return RecipeInput{
		Title:           r.Title,
		Description:     r.Description,
		Ingredients:     CloneIngredients(r.Ingredients),
		Instructions:    r.Instructions,
		SourceURL:       r.SourceURL,
		SourceName:      r.SourceName,
		PhotoIDs:        r.PhotoIDs,
		Tags:            r.Tags,
		Servings:        r.Servings,
		PrepTime:        r.PrepTime,
		CookTime:        r.CookTime,
		TotalTime:       r.TotalTime,
		Rating:          r.Rating,
		Difficulty:      r.Difficulty,
		NutritionalInfo: r.NutritionalInfo,
		Notes:           r.Notes,
	}
}
