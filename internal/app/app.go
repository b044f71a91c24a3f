// Package app wires the SQLite store and domain services into one unit
// shared by the server and the CLI.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/rpggio/authoring-mirror/internal/domain/merge"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/rpggio/authoring-mirror/internal/sqlite"
)

// App holds the opened store and every service built on it.
type App struct {
	DB       *sqlite.DB
	APIKeys  *sqlite.APIKeyRepository
	Branches *branch.Service
	Concepts *concept.Service
	Merges   *merge.Service
	Journal  *journal.Service
	Mirror   *mirror.Service
}

// Open opens (creating if needed) the database at path, applies migrations
// and wires the services.
func Open(path string, logger *slog.Logger) (*App, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return New(db, logger), nil
}

// New wires the services over an already migrated database.
func New(db *sqlite.DB, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	branchRepo := sqlite.NewBranchRepository(db)
	conceptRepo := sqlite.NewConceptRepository(db)
	mergeRepo := sqlite.NewMergeRepository(db)
	journalRepo := sqlite.NewJournalRepository(db)

	branchSvc := branch.NewService(branchRepo, logger)
	conceptSvc := concept.NewService(conceptRepo, conceptRepo, logger)
	mergeSvc := merge.NewService(mergeRepo, branchRepo, logger)
	journalSvc := journal.NewService(journalRepo, logger)

	return &App{
		DB:       db,
		APIKeys:  sqlite.NewAPIKeyRepository(db),
		Branches: branchSvc,
		Concepts: conceptSvc,
		Merges:   mergeSvc,
		Journal:  journalSvc,
		Mirror:   mirror.NewService(branchSvc, conceptSvc, mergeSvc, journalSvc, logger),
	}
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
