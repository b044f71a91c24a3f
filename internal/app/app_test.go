package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/stretchr/testify/require"
)

const replayLog = `10:00:01 INFO activity {"branchPath":"MAIN/PROJ","commitComment":"edit","changes":{"100":{"concept":{"conceptId":"100","term":"heart"}}}}
10:00:02 INFO activity {"branchPath":"MAIN/PROJ/TASK","commitComment":"edit","changes":{"100":{"concept":{"conceptId":"100","term":"cardiac"}},"200":{"concept":{"conceptId":"200","term":"lung"}}}}
10:00:03 INFO activity {"branchPath":"MAIN/PROJ","commitComment":"alice performed merge of MAIN/PROJ/TASK to MAIN/PROJ"}
10:00:04 INFO activity {"branchPath":"MAIN","commitComment":"bob performed merge of MAIN/PROJ to MAIN"}
10:00:05 INFO activity {"branchPath":"MAIN","commitComment":"version released"}
`

func TestOpenCreatesDatabaseDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mirror.db")

	a, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestReplayPromotesThroughTheTree(t *testing.T) {
	a, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	ctx := mirror.WithOrigin(context.Background(), "test")

	sum, err := a.Mirror.ReceiveActivityLog(ctx, strings.NewReader(replayLog))
	require.NoError(t, err)
	require.Equal(t, mirror.Summary{
		Lines:            5,
		Activities:       5,
		ContentChanges:   2,
		BranchOperations: 2,
		Unrecognized:     1,
	}, sum)

	branches, err := a.Branches.List(ctx)
	require.NoError(t, err)
	var paths []string
	for _, b := range branches {
		paths = append(paths, b.Path)
	}
	require.Equal(t, []string{branch.Root, "MAIN/PROJ", "MAIN/PROJ/TASK"}, paths)

	got, err := a.Concepts.Get(ctx, "MAIN", "100")
	require.NoError(t, err)
	require.Contains(t, string(got.Body), "cardiac")

	main, err := a.Concepts.List(ctx, "MAIN")
	require.NoError(t, err)
	require.Len(t, main, 2)

	entries, err := a.Journal.Recent(ctx, journal.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	require.Equal(t, journal.OutcomeUnrecognized, entries[0].Outcome)
	require.Equal(t, 5, entries[0].Line)
	require.Equal(t, "test", entries[0].Origin)
}

func TestReplayPromotesEditsMadeBeforeRebase(t *testing.T) {
	a, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	ctx := context.Background()

	log := `{"branchPath":"MAIN/TASK","commitComment":"edit","changes":{"x":{"concept":{"conceptId":"x","term":"sepsis"}}}}
{"branchPath":"MAIN/TASK","commitComment":"bob performed merge of MAIN to MAIN/TASK"}
{"branchPath":"MAIN","commitComment":"bob performed merge of MAIN/TASK to MAIN"}
`
	sum, err := a.Mirror.ReceiveActivityLog(ctx, strings.NewReader(log))
	require.NoError(t, err)
	require.Equal(t, 2, sum.BranchOperations)

	got, err := a.Concepts.Get(ctx, "MAIN", "x")
	require.NoError(t, err)
	require.Contains(t, string(got.Body), "sepsis")

	task, err := a.Branches.Get(ctx, "MAIN/TASK")
	require.NoError(t, err)
	require.Equal(t, task.BaseTick, task.PromotedTick)
}
