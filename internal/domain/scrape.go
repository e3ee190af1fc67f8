package domain

// JobStatus is the raw status string of a scrape job. The backend may add
// intermediate statuses; anything other than completed or failed means the
// job is still processing.
type JobStatus string

// Known scrape job statuses.
const (
	JobPending   JobStatus = "pending"
	JobScraping  JobStatus = "scraping"
	JobParsing   JobStatus = "parsing"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IsTerminal reports whether polling should stop for this status.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ScrapeJob mirrors the backend's scrape job record.
// RecipeID is set iff the job completed; Error is set iff it failed.
type ScrapeJob struct {
	ID           string    `json:"id"`
	Status       JobStatus `json:"status"`
	URL          string    `json:"url,omitempty"`
	RecipeID     *string   `json:"recipe_id,omitempty"`
	Error        *string   `json:"error,omitempty"`
	FailedAtStep *string   `json:"failed_at_step,omitempty"`
	CanRetry     bool      `json:"can_retry,omitempty"`
	RetryCount   int       `json:"retry_count,omitempty"`
}
