package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ramekin/ramekin-web/internal/domain"
)

func TestStatusText(t *testing.T) {
	assert.Equal(t, TextExtracting, StatusText(domain.JobParsing))
	assert.Equal(t, TextProcessing, StatusText(domain.JobPending))
	assert.Equal(t, TextProcessing, StatusText(domain.JobScraping))
	assert.Equal(t, TextProcessing, StatusText("something_new"))
}

func TestSettled(t *testing.T) {
	assert.True(t, Settled(completed("r1").job))
	assert.True(t, Settled(failed("x").job))
	assert.False(t, Settled(&domain.ScrapeJob{Status: domain.JobCompleted}))
	assert.False(t, Settled(&domain.ScrapeJob{Status: domain.JobCompleted, RecipeID: strPtr("")}))
	assert.False(t, Settled(status(domain.JobParsing).job))
}

func TestRecipeURL(t *testing.T) {
	assert.Equal(t, "https://ramekin.example/recipes/abc", RecipeURL("https://ramekin.example/", "abc"))
	assert.Equal(t, "https://ramekin.example/recipes/a%2Fb", RecipeURL("https://ramekin.example", "a/b"))
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{name: "og title wins", html: `<head><meta property="og:title" content=" Lemon Tart "><title>Site | Lemon Tart</title></head>`, want: "Lemon Tart"},
		{name: "title", html: `<head><title>  Soup  </title></head><body><h1>Other</h1></body>`, want: "Soup"},
		{name: "h1 fallback", html: `<body><h1>Brown   Bread
</h1></body>`, want: "Brown Bread"},
		{name: "nothing", html: `<body><p>text</p></body>`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageTitle(tt.html))
		})
	}
}
