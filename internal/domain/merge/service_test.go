package merge_test

import (
	"context"
	"testing"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/merge"
	"github.com/rpggio/authoring-mirror/internal/repository"
	"github.com/rpggio/authoring-mirror/internal/repository/mocks"
	"github.com/stretchr/testify/require"
)

func branches(ctx context.Context, bs ...*branch.Branch) *mocks.BranchRepository {
	repo := &mocks.BranchRepository{}
	for _, b := range bs {
		repo.On("Get", ctx, b.Path).Return(b, nil)
	}
	return repo
}

func TestMergeService_Rebase(t *testing.T) {
	ctx := context.Background()

	reader := branches(ctx,
		&branch.Branch{Path: "MAIN", HeadTick: 9},
		&branch.Branch{Path: "MAIN/A", Parent: "MAIN", BaseTick: 3, HeadTick: 5},
	)
	repo := &mocks.MergeRepository{}
	repo.On("Rebase", ctx, "MAIN", "MAIN/A", "merge MAIN to MAIN/A").
		Return(merge.Result{Kind: merge.KindRebase, Source: "MAIN", Target: "MAIN/A", Tick: 10}, nil)

	svc := merge.NewService(repo, reader, nil)
	res, err := svc.MergeBranchSync(ctx, "MAIN", "MAIN/A", nil, false)
	require.NoError(t, err)
	require.Equal(t, merge.KindRebase, res.Kind)
	require.False(t, res.Forced)
	repo.AssertExpectations(t)
}

func TestMergeService_PromotionWithMessage(t *testing.T) {
	ctx := context.Background()

	reader := branches(ctx,
		&branch.Branch{Path: "MAIN/A", Parent: "MAIN", BaseTick: 3, HeadTick: 5},
		&branch.Branch{Path: "MAIN/A/B", Parent: "MAIN/A", BaseTick: 4, HeadTick: 8},
	)
	repo := &mocks.MergeRepository{}
	repo.On("Unpromoted", ctx, "MAIN/A/B").Return(2, nil)
	repo.On("Promote", ctx, "MAIN/A/B", "MAIN/A", "squash").
		Return(merge.Result{Kind: merge.KindPromotion, Copied: 2}, nil)

	svc := merge.NewService(repo, reader, nil)
	msg := "squash"
	res, err := svc.MergeBranchSync(ctx, "MAIN/A/B", "MAIN/A", &msg, false)
	require.NoError(t, err)
	require.Equal(t, 2, res.Copied)
}

func TestMergeService_NothingToMerge(t *testing.T) {
	ctx := context.Background()

	reader := branches(ctx,
		&branch.Branch{Path: "MAIN", HeadTick: 3},
		&branch.Branch{Path: "MAIN/A", Parent: "MAIN", BaseTick: 3, HeadTick: 3},
	)
	repo := &mocks.MergeRepository{}
	repo.On("Rebase", ctx, "MAIN", "MAIN/A", "merge MAIN to MAIN/A").
		Return(merge.Result{Kind: merge.KindRebase}, nil)

	svc := merge.NewService(repo, reader, nil)

	_, err := svc.MergeBranchSync(ctx, "MAIN", "MAIN/A", nil, false)
	require.ErrorIs(t, err, merge.ErrNothingToMerge)

	res, err := svc.MergeBranchSync(ctx, "MAIN", "MAIN/A", nil, true)
	require.NoError(t, err)
	require.True(t, res.Forced)
}

func TestMergeService_PromotionPendingIgnoresRebaseBase(t *testing.T) {
	ctx := context.Background()

	// A rebase moved the child's base past its edits; they are still unpromoted.
	reader := branches(ctx,
		&branch.Branch{Path: "MAIN", HeadTick: 7},
		&branch.Branch{Path: "MAIN/T", Parent: "MAIN", BaseTick: 8, HeadTick: 8, PromotedTick: 2},
	)
	repo := &mocks.MergeRepository{}
	repo.On("Unpromoted", ctx, "MAIN/T").Return(1, nil).Once()
	repo.On("Promote", ctx, "MAIN/T", "MAIN", "merge MAIN/T to MAIN").
		Return(merge.Result{Kind: merge.KindPromotion, Copied: 1}, nil).Once()

	svc := merge.NewService(repo, reader, nil)
	res, err := svc.MergeBranchSync(ctx, "MAIN/T", "MAIN", nil, false)
	require.NoError(t, err)
	require.False(t, res.Forced)
	require.Equal(t, 1, res.Copied)

	repo.On("Unpromoted", ctx, "MAIN/T").Return(0, nil).Once()
	_, err = svc.MergeBranchSync(ctx, "MAIN/T", "MAIN", nil, false)
	require.ErrorIs(t, err, merge.ErrNothingToMerge)
	repo.AssertExpectations(t)
}

func TestMergeService_NotApplicable(t *testing.T) {
	ctx := context.Background()

	reader := branches(ctx,
		&branch.Branch{Path: "MAIN"},
		&branch.Branch{Path: "MAIN/A/B", Parent: "MAIN/A"},
		&branch.Branch{Path: "MAIN/C", Parent: "MAIN"},
	)
	svc := merge.NewService(&mocks.MergeRepository{}, reader, nil)

	_, err := svc.MergeBranchSync(ctx, "MAIN", "MAIN/A/B", nil, true)
	require.ErrorIs(t, err, merge.ErrNotApplicable)

	_, err = svc.MergeBranchSync(ctx, "MAIN/C", "MAIN/A/B", nil, true)
	require.ErrorIs(t, err, merge.ErrNotApplicable)
}

func TestMergeService_UnknownBranch(t *testing.T) {
	ctx := context.Background()

	reader := &mocks.BranchRepository{}
	reader.On("Get", ctx, "MAIN/X").Return((*branch.Branch)(nil), repository.ErrNotFound)

	svc := merge.NewService(&mocks.MergeRepository{}, reader, nil)
	_, err := svc.MergeBranchSync(ctx, "MAIN/X", "MAIN", nil, true)
	require.ErrorIs(t, err, branch.ErrBranchNotFound)
}
