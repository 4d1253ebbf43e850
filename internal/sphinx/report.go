package sphinx

import "time"

// Status is the terminal state of one build.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Report summarizes one build run for history and event publishing.
type Report struct {
	BuildID       string        `json:"build_id"`
	Started       time.Time     `json:"started"`
	Duration      time.Duration `json:"duration"`
	Status        Status        `json:"status"`
	ExitCode      int           `json:"exit_code"`
	SphinxVersion string        `json:"sphinx_version,omitempty"`
	Commit        string        `json:"commit,omitempty"`
	Error         string        `json:"error,omitempty"`
	IndexFile     string        `json:"index_file,omitempty"`
}
