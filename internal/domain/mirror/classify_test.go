package mirror_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/stretchr/testify/require"
)

func TestParseBranchOperation(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    mirror.BranchOperation
		ok      bool
	}{
		{
			name:    "rebase",
			comment: "alice performed merge of MAIN/A to MAIN/A/B",
			want:    mirror.BranchOperation{Actor: "alice", SourceBranchPath: "MAIN/A", TargetBranchPath: "MAIN/A/B"},
			ok:      true,
		},
		{
			name:    "promotion with long actor",
			comment: "Alice Smith (alice) performed merge of MAIN/PROJ/TASK-1 to MAIN/PROJ",
			want:    mirror.BranchOperation{Actor: "Alice Smith (alice)", SourceBranchPath: "MAIN/PROJ/TASK-1", TargetBranchPath: "MAIN/PROJ"},
			ok:      true,
		},
		{name: "trailing text", comment: "alice performed merge of MAIN/A to MAIN/A/B today"},
		{name: "not rooted at MAIN", comment: "alice performed merge of DEV/A to MAIN/A"},
		{name: "other action", comment: "alice renamed a file"},
		{name: "empty", comment: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mirror.ParseBranchOperation(tt.comment)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_ContentTakesPrecedence(t *testing.T) {
	a := mirror.Activity{
		BranchPath:    "MAIN/A/B",
		CommitComment: "alice performed merge of MAIN/A to MAIN/A/B",
		Changes: map[string]mirror.ConceptChange{
			"1": {Concept: json.RawMessage(`{"id":"10"}`)},
		},
	}

	out := mirror.Classify(a)
	require.Equal(t, mirror.OutcomeContent, out.Kind)
	require.Nil(t, out.Operation)
	require.Len(t, out.Documents, 1)
}

func TestClassify_ContentDocumentsMatchChanges(t *testing.T) {
	a := mirror.Activity{
		BranchPath: "MAIN",
		Changes: map[string]mirror.ConceptChange{
			"z": {Concept: json.RawMessage(`{"id":"3"}`)},
			"a": {Concept: json.RawMessage(`{"id":"1"}`)},
			"m": {Concept: json.RawMessage(`{"id":"2"}`)},
		},
	}

	out := mirror.Classify(a)
	require.Equal(t, mirror.OutcomeContent, out.Kind)

	got := make([]string, 0, len(out.Documents))
	for _, d := range out.Documents {
		got = append(got, string(d))
	}
	want := []string{`{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_BranchOperation(t *testing.T) {
	out := mirror.Classify(mirror.Activity{
		BranchPath:    "MAIN/A/B",
		CommitComment: "alice performed merge of MAIN/A to MAIN/A/B",
		Changes:       map[string]mirror.ConceptChange{},
	})
	require.Equal(t, mirror.OutcomeBranchOperation, out.Kind)
	require.Empty(t, out.Documents)
	require.Equal(t, "MAIN/A", out.Operation.SourceBranchPath)
	require.Equal(t, "MAIN/A/B", out.Operation.TargetBranchPath)
}

func TestClassify_Unrecognized(t *testing.T) {
	out := mirror.Classify(mirror.Activity{BranchPath: "MAIN", CommitComment: "alice renamed a file"})
	require.Equal(t, mirror.OutcomeUnrecognized, out.Kind)
	require.Empty(t, out.Documents)
	require.Nil(t, out.Operation)
	require.Equal(t, "unrecognized", out.Kind.String())
}

func TestClassify_IsTotalAndExclusive(t *testing.T) {
	docs := map[string]mirror.ConceptChange{"1": {Concept: concept.Document(`{"id":"1"}`)}}
	comments := []string{"", "alice renamed a file", "alice performed merge of MAIN to MAIN/A"}

	for _, changes := range []map[string]mirror.ConceptChange{nil, {}, docs} {
		for _, comment := range comments {
			out := mirror.Classify(mirror.Activity{BranchPath: "MAIN/A", CommitComment: comment, Changes: changes})
			switch out.Kind {
			case mirror.OutcomeContent:
				require.NotEmpty(t, out.Documents)
				require.Nil(t, out.Operation)
			case mirror.OutcomeBranchOperation:
				require.Empty(t, out.Documents)
				require.NotNil(t, out.Operation)
			case mirror.OutcomeUnrecognized:
				require.Empty(t, out.Documents)
				require.Nil(t, out.Operation)
			default:
				t.Fatalf("unexpected outcome %v", out.Kind)
			}
		}
	}
}
