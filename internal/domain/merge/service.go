package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/repository"
)

// Service replays merges between branches.
type Service struct {
	repo     Repository
	branches BranchReader
	logger   *slog.Logger
}

// NewService creates a new merge service.
func NewService(repo Repository, branches BranchReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, branches: branches, logger: logger}
}

// MergeBranchSync merges source into target before returning. A nil
// squashMessage records a default message. With force set, the merge is
// recorded even when source has nothing new for target.
func (s *Service) MergeBranchSync(ctx context.Context, source, target string, squashMessage *string, force bool) (*Result, error) {
	src, err := s.getBranch(ctx, source)
	if err != nil {
		return nil, err
	}
	tgt, err := s.getBranch(ctx, target)
	if err != nil {
		return nil, err
	}

	var kind Kind
	var pending bool
	switch {
	case branch.IsParentOf(source, target):
		kind = KindRebase
		pending = src.HeadTick > tgt.BaseTick
	case branch.IsParentOf(target, source):
		kind = KindPromotion
		n, err := s.repo.Unpromoted(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("checking %s for unpromoted edits: %w", source, err)
		}
		pending = n > 0
	default:
		return nil, fmt.Errorf("%w: %s to %s", ErrNotApplicable, source, target)
	}

	if !pending && !force {
		return nil, fmt.Errorf("%w: %s to %s", ErrNothingToMerge, source, target)
	}

	message := fmt.Sprintf("merge %s to %s", source, target)
	if squashMessage != nil && *squashMessage != "" {
		message = *squashMessage
	}

	var res Result
	if kind == KindRebase {
		res, err = s.repo.Rebase(ctx, source, target, message)
	} else {
		res, err = s.repo.Promote(ctx, source, target, message)
	}
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", kind, err)
	}
	res.Forced = !pending

	s.logger.Info("branch merged",
		"kind", res.Kind,
		"source", source,
		"target", target,
		"tick", res.Tick,
		"copied", res.Copied,
		"forced", res.Forced,
	)
	return &res, nil
}

func (s *Service) getBranch(ctx context.Context, path string) (*branch.Branch, error) {
	b, err := s.branches.Get(ctx, path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, branch.ErrBranchNotFound) {
			return nil, fmt.Errorf("%w: %s", branch.ErrBranchNotFound, path)
		}
		return nil, fmt.Errorf("getting branch %s: %w", path, err)
	}
	return b, nil
}
