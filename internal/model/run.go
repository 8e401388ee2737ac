package model

import "time"

// RunStatus is the outcome of a command run.
type RunStatus string

// Run statuses.
const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one invocation of a pipeline, as kept in the journal.
type Run struct {
	StartedAt time.Time
	ID        string
	Command   string
	Input     string
	Output    string
	Status    RunStatus
	Message   string
	Duration  time.Duration
	Records   int
	Matches   int
	Removed   int
}
