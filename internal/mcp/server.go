package mcp

import (
	"context"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/journal"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
)

// MirrorService defines replay operations needed by MCP.
type MirrorService interface {
	ReceiveActivity(ctx context.Context, a mirror.Activity) (mirror.OutcomeKind, error)
	ReceiveActivityLog(ctx context.Context, r io.Reader) (mirror.Summary, error)
}

// BranchService defines branch operations needed by MCP.
type BranchService interface {
	List(ctx context.Context) ([]branch.Branch, error)
	Get(ctx context.Context, path string) (*branch.Branch, error)
	History(ctx context.Context, path string, limit int) ([]branch.Commit, error)
}

// ConceptService defines concept operations needed by MCP.
type ConceptService interface {
	Get(ctx context.Context, branchPath, id string) (*concept.Concept, error)
	Search(ctx context.Context, branchPath, query string, opts concept.SearchOptions) ([]concept.SearchResult, error)
}

// JournalService defines journal operations needed by MCP.
type JournalService interface {
	Recent(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Mirror   MirrorService
	Branches BranchService
	Concepts ConceptService
	Journal  JournalService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      OperatorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "authoring-mirror",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(defaultOperator))
	}
	server.AddReceivingMiddleware(originMiddleware(cfg.TransportMode))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
