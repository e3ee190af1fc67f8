package domain

import "time"

// CaptureRecord is the local history entry for one capture attempt. It is
// keyed by the backend job id and updated as the job progresses.
type CaptureRecord struct {
	JobID     string    `json:"job_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Status    JobStatus `json:"status"`
	RecipeID  *string   `json:"recipe_id,omitempty"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Apply copies the progress of job onto the record.
func (r *CaptureRecord) Apply(job *ScrapeJob, now time.Time) {
	r.Status = job.Status
	r.RecipeID = job.RecipeID
	r.Error = job.Error
	r.UpdatedAt = now
}
