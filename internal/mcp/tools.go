package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
)

const defaultHistoryLimit = 20

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "receive_activity",
		Description: "Replay one authoring activity: a content change, a branch merge, or an unrecognized event that is skipped",
	}, receiveActivityHandler(svc.Mirror))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "receive_activity_log",
		Description: "Replay a raw activity log in line order; replay stops at the first failing line",
	}, receiveActivityLogHandler(svc.Mirror))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_branches",
		Description: "List every branch in the local store",
	}, listBranchesHandler(svc.Branches))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_branch",
		Description: "Get a branch and its most recent commits",
	}, getBranchHandler(svc.Branches))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_concept",
		Description: "Get the version of a concept a branch currently sees",
	}, getConceptHandler(svc.Concepts))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_concepts",
		Description: "Full-text search over the concepts a branch sees",
	}, searchConceptsHandler(svc.Concepts))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recently mirrored activities and how each was classified, newest first",
	}, getRecentActivityHandler(svc.Journal))
}

func receiveActivityHandler(svc MirrorService) sdkmcp.ToolHandlerFor[ReceiveActivityParams, ReceiveActivityResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, p ReceiveActivityParams) (*sdkmcp.CallToolResult, ReceiveActivityResult, error) {
		a, err := p.activity()
		if err != nil {
			return nil, ReceiveActivityResult{}, err
		}
		kind, err := svc.ReceiveActivity(ctx, a)
		if err != nil {
			return nil, ReceiveActivityResult{}, MapError(err)
		}
		return nil, ReceiveActivityResult{Outcome: kind.String()}, nil
	}
}

func receiveActivityLogHandler(svc MirrorService) sdkmcp.ToolHandlerFor[ReceiveActivityLogParams, ReceiveActivityLogResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, p ReceiveActivityLogParams) (*sdkmcp.CallToolResult, ReceiveActivityLogResult, error) {
		sum, err := svc.ReceiveActivityLog(ctx, strings.NewReader(p.Log))
		if err != nil {
			return nil, ReceiveActivityLogResult{}, fmt.Errorf("%w (applied %d activities)", MapError(err), sum.Activities)
		}
		return nil, ReceiveActivityLogResult{Summary: sum}, nil
	}
}

func listBranchesHandler(svc BranchService) sdkmcp.ToolHandlerFor[ListBranchesParams, ListBranchesResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListBranchesParams) (*sdkmcp.CallToolResult, ListBranchesResult, error) {
		branches, err := svc.List(ctx)
		if err != nil {
			return nil, ListBranchesResult{}, MapError(err)
		}
		if branches == nil {
			branches = []branch.Branch{}
		}
		return nil, ListBranchesResult{Branches: branches}, nil
	}
}

func getBranchHandler(svc BranchService) sdkmcp.ToolHandlerFor[GetBranchParams, GetBranchResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, p GetBranchParams) (*sdkmcp.CallToolResult, GetBranchResult, error) {
		b, err := svc.Get(ctx, p.Path)
		if err != nil {
			return nil, GetBranchResult{}, MapError(err)
		}
		limit := p.HistoryLimit
		if limit <= 0 {
			limit = defaultHistoryLimit
		}
		history, err := svc.History(ctx, p.Path, limit)
		if err != nil {
			return nil, GetBranchResult{}, MapError(err)
		}
		return nil, GetBranchResult{Branch: b, History: history}, nil
	}
}

func getConceptHandler(svc ConceptService) sdkmcp.ToolHandlerFor[GetConceptParams, GetConceptResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, p GetConceptParams) (*sdkmcp.CallToolResult, GetConceptResult, error) {
		c, err := svc.Get(ctx, p.BranchPath, p.ID)
		if err != nil {
			return nil, GetConceptResult{}, MapError(err)
		}
		view, err := toConceptView(*c)
		if err != nil {
			return nil, GetConceptResult{}, err
		}
		return nil, GetConceptResult{Concept: view}, nil
	}
}

func searchConceptsHandler(svc ConceptService) sdkmcp.ToolHandlerFor[SearchConceptsParams, SearchConceptsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, p SearchConceptsParams) (*sdkmcp.CallToolResult, SearchConceptsResult, error) {
		results, err := svc.Search(ctx, p.BranchPath, p.Query, concept.SearchOptions{Limit: p.Limit, Offset: p.Offset})
		if err != nil {
			return nil, SearchConceptsResult{}, MapError(err)
		}
		hits := make([]SearchHit, 0, len(results))
		for _, r := range results {
			view, err := toConceptView(r.Concept)
			if err != nil {
				return nil, SearchConceptsResult{}, err
			}
			hits = append(hits, SearchHit{Concept: view, Rank: r.Rank, Snippet: r.Snippet})
		}
		return nil, SearchConceptsResult{Results: hits}, nil
	}
}

func getRecentActivityHandler(svc JournalService) sdkmcp.ToolHandlerFor[GetRecentActivityParams, GetRecentActivityResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, p GetRecentActivityParams) (*sdkmcp.CallToolResult, GetRecentActivityResult, error) {
		opts := journal.ListOptions{BranchPath: p.BranchPath, Limit: p.Limit}
		if p.Outcome != "" {
			outcome := journal.Outcome(p.Outcome)
			switch outcome {
			case journal.OutcomeContent, journal.OutcomeBranchOperation, journal.OutcomeUnrecognized:
				opts.Outcome = &outcome
			default:
				return nil, GetRecentActivityResult{}, fmt.Errorf("unknown outcome %q", p.Outcome)
			}
		}
		if opts.Limit <= 0 {
			opts.Limit = defaultHistoryLimit
		}
		entries, err := svc.Recent(ctx, opts)
		if err != nil {
			return nil, GetRecentActivityResult{}, MapError(err)
		}
		if entries == nil {
			entries = []journal.Entry{}
		}
		return nil, GetRecentActivityResult{Entries: entries}, nil
	}
}
