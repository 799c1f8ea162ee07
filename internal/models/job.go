package models

import "time"

type JobStatus string

const (
	JobQueued  JobStatus = "QUEUED"
	JobRunning JobStatus = "RUNNING"
	JobDone    JobStatus = "DONE"
	JobFailed  JobStatus = "FAILED"
)

// Job is a queued render. Stage mirrors the render state while RUNNING.
type Job struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Status     JobStatus  `json:"status"`
	Stage      string     `json:"stage,omitempty"`
	Images     []string   `json:"images"`
	Audio      string     `json:"audio"`
	URL        string     `json:"url,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Terminal reports whether the job will not change again.
func (j *Job) Terminal() bool {
	return j.Status == JobDone || j.Status == JobFailed
}
