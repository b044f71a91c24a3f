package mirror

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/authoring-mirror/internal/domain/journal"
)

type originKey struct{}

// WithOrigin labels activities received under ctx with the transport that
// delivered them. The label ends up in the journal.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFromContext returns the origin set by WithOrigin, or "".
func OriginFromContext(ctx context.Context) string {
	v, _ := ctx.Value(originKey{}).(string)
	return v
}

// Service replays authoring activities onto the local branch store.
// Activities are applied one at a time; a whole log holds the service until
// it finishes, so two streams never interleave.
type Service struct {
	branches BranchStore
	concepts ConceptStore
	merges   MergeEngine
	journal  Journal
	logger   *slog.Logger

	mu sync.Mutex
}

// NewService creates a new mirror service. journal may be nil.
func NewService(branches BranchStore, concepts ConceptStore, merges MergeEngine, journal Journal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		branches: branches,
		concepts: concepts,
		merges:   merges,
		journal:  journal,
		logger:   logger,
	}
}

// ReceiveActivity replays a single activity.
func (s *Service) ReceiveActivity(ctx context.Context, a Activity) (OutcomeKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receive(ctx, a, 0)
}

// ReceiveActivityLog replays every activity in a raw log, in line order.
// The first failure stops the replay; activities before it stay applied.
// On failure Lines counts up to and including the failing line.
func (s *Service) ReceiveActivityLog(ctx context.Context, r io.Reader) (sum Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reader := NewLogReader(r)
	defer func() {
		sum.Lines = reader.Line()
	}()

	for line, a := range reader.All() {
		if err := ctx.Err(); err != nil {
			return sum, &LineError{Line: line, Err: err}
		}
		kind, err := s.receive(ctx, a, line)
		if err != nil {
			return sum, &LineError{Line: line, Err: err}
		}
		sum.add(kind)
	}
	if err := reader.Err(); err != nil {
		return sum, err
	}

	s.logger.Info("activity log mirrored",
		"lines", reader.Line(),
		"activities", sum.Activities,
		"content_changes", sum.ContentChanges,
		"branch_operations", sum.BranchOperations,
		"unrecognized", sum.Unrecognized,
	)
	return sum, nil
}

// ReceiveActivityFile replays a log file, plain or compressed. The file is
// closed on every path.
func (s *Service) ReceiveActivityFile(ctx context.Context, path string) (Summary, error) {
	rc, err := OpenLog(path)
	if err != nil {
		return Summary{}, err
	}
	defer rc.Close()

	sum, err := s.ReceiveActivityLog(ctx, rc)
	if err != nil {
		return sum, fmt.Errorf("%s: %w", path, err)
	}
	return sum, nil
}

func (s *Service) receive(ctx context.Context, a Activity, line int) (OutcomeKind, error) {
	if a.BranchPath == "" {
		return OutcomeUnrecognized, ErrMissingBranchPath
	}

	out := Classify(a)
	if out.Kind == OutcomeBranchOperation && out.Operation.TargetBranchPath != a.BranchPath {
		return out.Kind, fmt.Errorf("%w: branch path %q, merge target %q",
			ErrInconsistentEvent, a.BranchPath, out.Operation.TargetBranchPath)
	}

	exists, err := s.branches.Exists(ctx, a.BranchPath)
	if err != nil {
		return out.Kind, err
	}
	if !exists {
		if err := s.branches.EnsureExists(ctx, a.BranchPath); err != nil {
			return out.Kind, fmt.Errorf("creating branch %s: %w", a.BranchPath, err)
		}
	}

	entry := &journal.Entry{
		BranchPath: a.BranchPath,
		Comment:    a.CommitComment,
		Origin:     OriginFromContext(ctx),
		Line:       line,
	}

	switch out.Kind {
	case OutcomeContent:
		s.logger.Info("mirroring content change", "branch", a.BranchPath, "concepts", len(out.Documents))
		if err := s.concepts.Update(ctx, out.Documents, a.BranchPath); err != nil {
			return out.Kind, fmt.Errorf("applying content change to %s: %w", a.BranchPath, err)
		}
		entry.Outcome = journal.OutcomeContent
		entry.ConceptCount = len(out.Documents)

	case OutcomeBranchOperation:
		op := out.Operation
		s.logger.Info("mirroring branch operation", "source", op.SourceBranchPath, "target", op.TargetBranchPath)
		if _, err := s.merges.MergeBranchSync(ctx, op.SourceBranchPath, op.TargetBranchPath, nil, true); err != nil {
			return out.Kind, fmt.Errorf("replaying merge of %s to %s: %w", op.SourceBranchPath, op.TargetBranchPath, err)
		}
		entry.Outcome = journal.OutcomeBranchOperation
		entry.SourcePath = op.SourceBranchPath
		entry.TargetPath = op.TargetBranchPath

	default:
		s.logger.Warn("could not mirror activity: unrecognized activity",
			"branch", a.BranchPath,
			"comment", a.CommitComment,
			"line", line,
		)
		entry.Outcome = journal.OutcomeUnrecognized
	}

	s.record(ctx, entry)
	return out.Kind, nil
}

func (s *Service) record(ctx context.Context, entry *journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to journal mirrored activity", "branch", entry.BranchPath, "error", err)
	}
}
