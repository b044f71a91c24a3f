package mirror

import (
	"regexp"
	"sort"

	"github.com/rpggio/authoring-mirror/internal/domain/concept"
)

// OutcomeKind identifies how an activity is replayed.
type OutcomeKind int

const (
	OutcomeUnrecognized OutcomeKind = iota
	OutcomeContent
	OutcomeBranchOperation
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContent:
		return "content"
	case OutcomeBranchOperation:
		return "branch_operation"
	default:
		return "unrecognized"
	}
}

// Outcome is the classification of one activity. Documents is set only for
// OutcomeContent and Operation only for OutcomeBranchOperation.
type Outcome struct {
	Kind      OutcomeKind
	Documents []concept.Document
	Operation *BranchOperation
}

// The authoring system has no merge flag on its events; the commit comment it
// writes for its own audit trail is the only signal.
var branchMergeComment = regexp.MustCompile(`^(.*) performed merge of (MAIN[^ ]*) to (MAIN[^ ]*)$`)

// ParseBranchOperation matches a commit comment such as
// "alice performed merge of MAIN/A to MAIN/A/B".
func ParseBranchOperation(comment string) (BranchOperation, bool) {
	m := branchMergeComment.FindStringSubmatch(comment)
	if m == nil {
		return BranchOperation{}, false
	}
	return BranchOperation{
		Actor:            m[1],
		SourceBranchPath: m[2],
		TargetBranchPath: m[3],
	}, true
}

// Classify decides how an activity is replayed. Content changes take
// precedence over a matching merge comment.
func Classify(a Activity) Outcome {
	if len(a.Changes) > 0 {
		keys := make([]string, 0, len(a.Changes))
		for k := range a.Changes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		docs := make([]concept.Document, 0, len(keys))
		for _, k := range keys {
			docs = append(docs, a.Changes[k].Concept)
		}
		return Outcome{Kind: OutcomeContent, Documents: docs}
	}

	if op, ok := ParseBranchOperation(a.CommitComment); ok {
		return Outcome{Kind: OutcomeBranchOperation, Operation: &op}
	}

	return Outcome{Kind: OutcomeUnrecognized}
}
