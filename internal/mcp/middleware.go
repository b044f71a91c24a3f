package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
)

type contextKey int

const operatorKey contextKey = iota

const defaultOperator = "local"

// getOperator extracts the authenticated operator from context.
func getOperator(ctx context.Context) string {
	v, _ := ctx.Value(operatorKey).(string)
	return v
}

// OperatorResolver resolves the operator owning a bearer token.
type OperatorResolver interface {
	ResolveOperator(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver OperatorResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			operator, err := resolver.ResolveOperator(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if operator == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = context.WithValue(ctx, operatorKey, operator)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware injects a default operator when auth is disabled.
func noAuthMiddleware(operator string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, operatorKey, operator)
			return next(ctx, method, req)
		}
	}
}

// originMiddleware tags replayed activities with the transport and operator
// that delivered them.
func originMiddleware(transportMode string) sdkmcp.Middleware {
	if transportMode == "" {
		transportMode = "mcp"
	}
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			origin := "mcp-" + transportMode
			if op := getOperator(ctx); op != "" {
				origin += ":" + op
			}
			return next(mirror.WithOrigin(ctx, origin), method, req)
		}
	}
}
