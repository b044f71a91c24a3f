package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
)

type ConceptChangeParams struct {
	Concept map[string]any `json:"concept" jsonschema:"edited concept document"`
}

type ReceiveActivityParams struct {
	BranchPath    string                         `json:"branchPath" jsonschema:"branch the activity happened on, e.g. MAIN/A"`
	CommitComment string                         `json:"commitComment,omitempty" jsonschema:"commit comment recorded by the authoring system"`
	Changes       map[string]ConceptChangeParams `json:"changes,omitempty" jsonschema:"edited concepts keyed by concept id"`
}

// activity converts tool input into the wire activity.
func (p ReceiveActivityParams) activity() (mirror.Activity, error) {
	a := mirror.Activity{
		BranchPath:    p.BranchPath,
		CommitComment: p.CommitComment,
	}
	if len(p.Changes) == 0 {
		return a, nil
	}
	a.Changes = make(map[string]mirror.ConceptChange, len(p.Changes))
	for key, change := range p.Changes {
		doc, err := json.Marshal(change.Concept)
		if err != nil {
			return mirror.Activity{}, fmt.Errorf("encoding concept %s: %w", key, err)
		}
		a.Changes[key] = mirror.ConceptChange{Concept: doc}
	}
	return a, nil
}

type ReceiveActivityResult struct {
	Outcome string `json:"outcome"`
}

type ReceiveActivityLogParams struct {
	Log string `json:"log" jsonschema:"raw activity log, one JSON object per line"`
}

type ReceiveActivityLogResult struct {
	Summary mirror.Summary `json:"summary"`
}

type ListBranchesParams struct{}

type ListBranchesResult struct {
	Branches []branch.Branch `json:"branches"`
}

type GetBranchParams struct {
	Path         string `json:"path" jsonschema:"branch path"`
	HistoryLimit int    `json:"history_limit,omitempty" jsonschema:"number of recent commits to include"`
}

type GetBranchResult struct {
	Branch  *branch.Branch  `json:"branch"`
	History []branch.Commit `json:"history,omitempty"`
}

type GetConceptParams struct {
	BranchPath string `json:"branch_path" jsonschema:"branch to resolve the concept on"`
	ID         string `json:"id" jsonschema:"concept id"`
}

type ConceptView struct {
	ID         string         `json:"id"`
	BranchPath string         `json:"branch_path"`
	Tick       int64          `json:"tick"`
	Document   map[string]any `json:"document"`
}

func toConceptView(c concept.Concept) (ConceptView, error) {
	view := ConceptView{ID: c.ID, BranchPath: c.BranchPath, Tick: c.Tick}
	if err := json.Unmarshal(c.Body, &view.Document); err != nil {
		return ConceptView{}, fmt.Errorf("decoding concept %s: %w", c.ID, err)
	}
	return view, nil
}

type GetConceptResult struct {
	Concept ConceptView `json:"concept"`
}

type SearchConceptsParams struct {
	BranchPath string `json:"branch_path" jsonschema:"branch to search"`
	Query      string `json:"query" jsonschema:"full-text query"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
	Offset     int    `json:"offset,omitempty" jsonschema:"offset for pagination"`
}

type SearchHit struct {
	Concept ConceptView `json:"concept"`
	Rank    float64     `json:"rank"`
	Snippet string      `json:"snippet,omitempty"`
}

type SearchConceptsResult struct {
	Results []SearchHit `json:"results"`
}

type GetRecentActivityParams struct {
	BranchPath string `json:"branch_path,omitempty" jsonschema:"only entries for this branch"`
	Outcome    string `json:"outcome,omitempty" jsonschema:"content, branch_operation or unrecognized"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of entries"`
}

type GetRecentActivityResult struct {
	Entries []journal.Entry `json:"entries"`
}
