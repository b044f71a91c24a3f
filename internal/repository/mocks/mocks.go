package mocks

import (
	"context"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/rpggio/authoring-mirror/internal/domain/merge"
	"github.com/stretchr/testify/mock"
)

// BranchRepository is a mock for branch.Repository.
type BranchRepository struct {
	mock.Mock
}

func (m *BranchRepository) Create(ctx context.Context, path string) (*branch.Branch, error) {
	args := m.Called(ctx, path)
	if b, ok := args.Get(0).(*branch.Branch); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BranchRepository) Get(ctx context.Context, path string) (*branch.Branch, error) {
	args := m.Called(ctx, path)
	if b, ok := args.Get(0).(*branch.Branch); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BranchRepository) List(ctx context.Context) ([]branch.Branch, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]branch.Branch); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BranchRepository) Commits(ctx context.Context, path string, limit int) ([]branch.Commit, error) {
	args := m.Called(ctx, path, limit)
	if list, ok := args.Get(0).([]branch.Commit); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ConceptRepository is a mock for concept.Repository.
type ConceptRepository struct {
	mock.Mock
}

func (m *ConceptRepository) Commit(ctx context.Context, branchPath string, concepts []concept.Concept, message string) (int64, error) {
	args := m.Called(ctx, branchPath, concepts, message)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConceptRepository) Get(ctx context.Context, branchPath, id string) (*concept.Concept, error) {
	args := m.Called(ctx, branchPath, id)
	if c, ok := args.Get(0).(*concept.Concept); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConceptRepository) List(ctx context.Context, branchPath string) ([]concept.Concept, error) {
	args := m.Called(ctx, branchPath)
	if list, ok := args.Get(0).([]concept.Concept); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MergeRepository is a mock for merge.Repository.
type MergeRepository struct {
	mock.Mock
}

func (m *MergeRepository) Rebase(ctx context.Context, source, target, message string) (merge.Result, error) {
	args := m.Called(ctx, source, target, message)
	return args.Get(0).(merge.Result), args.Error(1)
}

func (m *MergeRepository) Promote(ctx context.Context, source, target, message string) (merge.Result, error) {
	args := m.Called(ctx, source, target, message)
	return args.Get(0).(merge.Result), args.Error(1)
}

func (m *MergeRepository) Unpromoted(ctx context.Context, source string) (int, error) {
	args := m.Called(ctx, source)
	return args.Int(0), args.Error(1)
}

// JournalRepository is a mock for journal.Repository.
type JournalRepository struct {
	mock.Mock
}

func (m *JournalRepository) Log(ctx context.Context, entry *journal.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *JournalRepository) List(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]journal.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// BranchStore is a mock for mirror.BranchStore.
type BranchStore struct {
	mock.Mock
}

func (m *BranchStore) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *BranchStore) EnsureExists(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// ConceptStore is a mock for mirror.ConceptStore.
type ConceptStore struct {
	mock.Mock
}

func (m *ConceptStore) Update(ctx context.Context, docs []concept.Document, branchPath string) error {
	args := m.Called(ctx, docs, branchPath)
	return args.Error(0)
}

// MergeEngine is a mock for mirror.MergeEngine.
type MergeEngine struct {
	mock.Mock
}

func (m *MergeEngine) MergeBranchSync(ctx context.Context, source, target string, squashMessage *string, force bool) (*merge.Result, error) {
	args := m.Called(ctx, source, target, squashMessage, force)
	if res, ok := args.Get(0).(*merge.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// Journal is a mock for mirror.Journal.
type Journal struct {
	mock.Mock
}

func (m *Journal) Record(ctx context.Context, entry *journal.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
