package journal

import "time"

// Outcome is how a mirrored activity was classified.
type Outcome string

const (
	OutcomeContent         Outcome = "content"
	OutcomeBranchOperation Outcome = "branch_operation"
	OutcomeUnrecognized    Outcome = "unrecognized"
)

// Entry records one mirrored activity.
type Entry struct {
	ID           string    `json:"id"`
	Outcome      Outcome   `json:"outcome"`
	BranchPath   string    `json:"branch_path"`
	SourcePath   string    `json:"source_path,omitempty"`
	TargetPath   string    `json:"target_path,omitempty"`
	ConceptCount int       `json:"concept_count"`
	Comment      string    `json:"comment,omitempty"`
	Origin       string    `json:"origin,omitempty"` // transport that delivered the activity
	Line         int       `json:"line,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
