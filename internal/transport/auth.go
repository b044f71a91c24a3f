package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type operatorKey struct{}

// OperatorResolver resolves the operator owning a bearer token.
type OperatorResolver interface {
	ResolveOperator(ctx context.Context, token string) (string, error)
}

// OperatorFromContext returns the authenticated operator, if present.
func OperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorKey{}).(string)
	return operator, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver OperatorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			operator, err := resolver.ResolveOperator(r.Context(), token)
			if err != nil || operator == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey{}, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
