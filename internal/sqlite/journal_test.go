package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/stretchr/testify/require"
)

func TestJournalRepository_LogAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJournalRepository(db)
	ctx := context.Background()

	entries := []journal.Entry{
		{ID: "e1", Outcome: journal.OutcomeContent, BranchPath: "MAIN/A", ConceptCount: 2, Origin: "cli", Line: 1},
		{ID: "e2", Outcome: journal.OutcomeBranchOperation, BranchPath: "MAIN/A/B", SourcePath: "MAIN/A", TargetPath: "MAIN/A/B", Comment: "x performed merge of MAIN/A to MAIN/A/B"},
		{ID: "e3", Outcome: journal.OutcomeUnrecognized, BranchPath: "MAIN/A", Comment: "renamed"},
	}
	for i := range entries {
		require.NoError(t, repo.Log(ctx, &entries[i]))
		require.False(t, entries[i].CreatedAt.IsZero())
	}

	all, err := repo.List(ctx, journal.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "e3", all[0].ID)
	require.Equal(t, "e1", all[2].ID)
	require.Equal(t, 2, all[2].ConceptCount)
	require.Equal(t, "cli", all[2].Origin)
	require.Equal(t, "MAIN/A", all[1].SourcePath)

	byBranch, err := repo.List(ctx, journal.ListOptions{BranchPath: "MAIN/A"})
	require.NoError(t, err)
	require.Len(t, byBranch, 2)

	outcome := journal.OutcomeBranchOperation
	byOutcome, err := repo.List(ctx, journal.ListOptions{Outcome: &outcome})
	require.NoError(t, err)
	require.Len(t, byOutcome, 1)
	require.Equal(t, "MAIN/A/B", byOutcome[0].TargetPath)

	paged, err := repo.List(ctx, journal.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, "e2", paged[0].ID)

	offsetOnly, err := repo.List(ctx, journal.ListOptions{Offset: 2})
	require.NoError(t, err)
	require.Len(t, offsetOnly, 1)
}

func TestJournalRepository_DuplicateID(t *testing.T) {
	db := NewTestDB(t)
	repo := NewJournalRepository(db)
	ctx := context.Background()

	entry := &journal.Entry{ID: "dup", Outcome: journal.OutcomeContent, BranchPath: "MAIN"}
	require.NoError(t, repo.Log(ctx, entry))
	require.Error(t, repo.Log(ctx, entry))
}
