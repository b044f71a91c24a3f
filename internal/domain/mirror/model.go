package mirror

import "github.com/rpggio/authoring-mirror/internal/domain/concept"

// Activity is one action recorded by the remote authoring system.
type Activity struct {
	BranchPath    string                   `json:"branchPath"`
	CommitComment string                   `json:"commitComment"`
	Changes       map[string]ConceptChange `json:"changes,omitempty"`
}

// ConceptChange wraps a single edited concept.
type ConceptChange struct {
	Concept concept.Document `json:"concept"`
}

// BranchOperation is a merge, rebase or promotion recovered from a commit comment.
type BranchOperation struct {
	Actor            string `json:"actor"`
	SourceBranchPath string `json:"source_branch_path"`
	TargetBranchPath string `json:"target_branch_path"`
}

// Summary counts what a log replay did.
type Summary struct {
	Lines            int `json:"lines"`
	Activities       int `json:"activities"`
	ContentChanges   int `json:"content_changes"`
	BranchOperations int `json:"branch_operations"`
	Unrecognized     int `json:"unrecognized"`
}

func (s *Summary) add(kind OutcomeKind) {
	s.Activities++
	switch kind {
	case OutcomeContent:
		s.ContentChanges++
	case OutcomeBranchOperation:
		s.BranchOperations++
	default:
		s.Unrecognized++
	}
}
