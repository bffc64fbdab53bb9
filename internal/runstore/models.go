package runstore

import (
	"time"

	"ballotlink/internal/linker"
	"ballotlink/internal/mapfile"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Input roles.
const (
	InputPrimaryContests     = "primary_contests"
	InputPrimaryCandidates   = "primary_candidates"
	InputSecondaryContests   = "secondary_contests"
	InputSecondaryCandidates = "secondary_candidates"
	InputOverrides           = "overrides"
)

// Run is one recorded linking run.
type Run struct {
	ID           string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	ConfigPath   string
	OutputDir    string
	SkipPattern  string
	Inputs       map[string]string
	Counts       mapfile.Counts
	ErrorMessage string

	// Populated by Get only.
	ContestLinks   []linker.ContestLink
	CandidateLinks []linker.CandidateLink
	Conflicts      []string
	Warnings       []string
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
