package model

import "time"

// JobState is the lifecycle state of an asynchronous crawl.
type JobState string

// Job lifecycle states. A job moves queued → running → done or error.
const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobError   JobState = "error"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == JobDone || s == JobError
}

// Job is an asynchronous crawl tracked by the job manager.
// Jobs returned by the manager are snapshots; mutating them has no effect.
type Job struct {
	// ID is the unique job identifier.
	ID string `json:"job_id"`

	// Seed is the user-supplied hostname or URL.
	Seed string `json:"seed"`

	// Depth is the requested crawl depth.
	Depth int `json:"depth"`

	// State is the current lifecycle state.
	State JobState `json:"status"`

	// Message is a human-readable progress or error description.
	Message string `json:"message"`

	// Visited is the number of URLs attempted so far.
	Visited int `json:"visited"`

	// CurrentURL is the URL being processed.
	CurrentURL string `json:"current_url,omitempty"`

	// Report is the final crawl report. It is nil until the job finishes.
	Report *CrawlReport `json:"-"`

	// ResultFile is the path of the written result file, if any.
	ResultFile string `json:"file,omitempty"`

	// CreatedAt is when the job was submitted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the job last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
