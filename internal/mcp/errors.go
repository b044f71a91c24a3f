package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/merge"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/rpggio/authoring-mirror/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// MapError maps domain errors to MCP error codes. Unknown errors are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	apiErr := &APIError{Message: err.Error(), cause: err}
	var lineErr *mirror.LineError
	if errors.As(err, &lineErr) {
		apiErr.Details = map[string]int{"line": lineErr.Line}
	}

	switch {
	case errors.Is(err, mirror.ErrMissingBranchPath):
		apiErr.Code = "MISSING_BRANCH_PATH"
		apiErr.RecoveryHint = "Every activity needs branchPath"
	case errors.Is(err, mirror.ErrInconsistentEvent):
		apiErr.Code = "INCONSISTENT_EVENT"
		apiErr.RecoveryHint = "branchPath must equal the merge target"
	case errors.Is(err, branch.ErrBranchNotFound):
		apiErr.Code = "BRANCH_NOT_FOUND"
		apiErr.RecoveryHint = "Call list_branches to see known branches"
	case errors.Is(err, branch.ErrInvalidPath):
		apiErr.Code = "INVALID_BRANCH_PATH"
		apiErr.RecoveryHint = "Branch paths start with MAIN"
	case errors.Is(err, concept.ErrConceptNotFound):
		apiErr.Code = "CONCEPT_NOT_FOUND"
		apiErr.RecoveryHint = "Check the id and branch"
	case errors.Is(err, concept.ErrInvalidDocument), errors.Is(err, concept.ErrMissingID):
		apiErr.Code = "INVALID_CONCEPT"
		apiErr.RecoveryHint = "Concepts are JSON objects with conceptId or id"
	case errors.Is(err, merge.ErrNotApplicable):
		apiErr.Code = "MERGE_NOT_APPLICABLE"
		apiErr.RecoveryHint = "Merges run between a parent and a direct child"
	case errors.Is(err, repository.ErrInvalidInput):
		apiErr.Code = "INVALID_INPUT"
	case lineErr != nil:
		apiErr.Code = "MALFORMED_LOG"
	default:
		return err
	}
	return apiErr
}
