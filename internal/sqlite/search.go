package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/rpggio/authoring-mirror/internal/domain/concept"
)

// Search performs a full-text search over the concepts visible on a branch
func (r *ConceptRepository) Search(ctx context.Context, branchPath, query string, opts concept.SearchOptions) ([]concept.SearchResult, error) {
	chain, err := loadChain(ctx, r.db, branchPath)
	if err != nil {
		return nil, err
	}

	ftsQuery := `
		SELECT c.concept_id, c.tick, bm25(concepts_fts) AS rank,
			snippet(concepts_fts, 0, '[', ']', '...', 8) AS snippet
		FROM concepts_fts
		JOIN concepts c ON c.rowid = concepts_fts.rowid
		WHERE concepts_fts MATCH ? AND c.branch_path = ? AND c.tick <= ?
	`

	type hit struct {
		id         string
		branchPath string
		tick       int64
		rank       float64
		snippet    string
	}
	var hits []hit
	for _, link := range chain {
		rows, err := r.db.QueryContext(ctx, ftsQuery, query, link.path, link.limit)
		if err != nil {
			return nil, fmt.Errorf("failed to search concepts: %w", err)
		}
		for rows.Next() {
			h := hit{branchPath: link.path}
			if err := rows.Scan(&h.id, &h.tick, &h.rank, &h.snippet); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan search result: %w", err)
			}
			hits = append(hits, h)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("error iterating search results: %w", err)
		}
	}

	// A hit counts only if it is the version the branch currently sees.
	var results []concept.SearchResult
	for _, h := range hits {
		current, err := resolveConcept(ctx, r.db, chain, h.id)
		if err != nil {
			return nil, err
		}
		if current.BranchPath != h.branchPath || current.Tick != h.tick {
			continue
		}
		results = append(results, concept.SearchResult{
			Concept: *current,
			Rank:    h.rank,
			Snippet: h.snippet,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank < results[j].Rank
		}
		return results[i].Concept.ID < results[j].Concept.ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(results) {
			return nil, nil
		}
		results = results[opts.Offset:]
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}
