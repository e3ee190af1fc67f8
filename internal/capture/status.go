package capture

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ramekin/ramekin-web/internal/domain"
)

// User-facing progress and failure texts.
const (
	TextSaving     = "Saving recipe..."
	TextExtracting = "Extracting recipe..."
	TextProcessing = "Processing..."
	TextSaved      = "Recipe saved!"

	TextNoOpener      = "This page must be opened via the Ramekin capture bookmarklet"
	TextNotLoggedIn   = "You must be logged in to Ramekin to save recipes"
	TextSaveFailed    = "Failed to save recipe"
	TextExtractFailed = "Failed to extract recipe"
	TextPollFailed    = "Error checking status"
)

// StatusText is the progress line shown for a job that has not settled.
func StatusText(status domain.JobStatus) string {
	if status == domain.JobParsing {
		return TextExtracting
	}
	return TextProcessing
}

// Settled reports whether job needs no further polling: it failed, or it
// completed and names the saved recipe. A completed job without a recipe id
// keeps polling.
func Settled(job *domain.ScrapeJob) bool {
	switch job.Status {
	case domain.JobFailed:
		return true
	case domain.JobCompleted:
		return job.RecipeID != nil && *job.RecipeID != ""
	default:
		return false
	}
}

// RecipeURL is the page of a saved recipe in the Ramekin UI at origin.
func RecipeURL(origin, recipeID string) string {
	return strings.TrimRight(origin, "/") + "/recipes/" + url.PathEscape(recipeID)
}

// PageTitle extracts a human-readable title from a captured page: the
// og:title meta tag, then <title>, then the first <h1>. It returns "" when
// the document has none or cannot be parsed.
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
}
