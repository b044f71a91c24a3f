package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/concept"
	"github.com/rpggio/authoring-mirror/internal/domain/merge"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Line    int             `json:"line,omitempty"`
	Summary *mirror.Summary `json:"summary,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// errorBody maps a domain error to an HTTP status and payload.
func errorBody(err error) (int, ErrorBody) {
	body := ErrorBody{Message: err.Error()}
	var lineErr *mirror.LineError
	if errors.As(err, &lineErr) {
		body.Line = lineErr.Line
	}

	status := http.StatusInternalServerError
	body.Code = "INTERNAL"
	switch {
	case errors.Is(err, mirror.ErrMissingBranchPath):
		status, body.Code = http.StatusUnprocessableEntity, "MISSING_BRANCH_PATH"
	case errors.Is(err, mirror.ErrInconsistentEvent):
		status, body.Code = http.StatusUnprocessableEntity, "INCONSISTENT_EVENT"
	case errors.Is(err, branch.ErrInvalidPath):
		status, body.Code = http.StatusUnprocessableEntity, "INVALID_BRANCH_PATH"
	case errors.Is(err, concept.ErrInvalidDocument), errors.Is(err, concept.ErrMissingID):
		status, body.Code = http.StatusUnprocessableEntity, "INVALID_CONCEPT"
	case errors.Is(err, branch.ErrBranchNotFound):
		status, body.Code = http.StatusNotFound, "BRANCH_NOT_FOUND"
	case errors.Is(err, merge.ErrNotApplicable):
		status, body.Code = http.StatusConflict, "MERGE_NOT_APPLICABLE"
	case lineErr != nil:
		status, body.Code = http.StatusBadRequest, "MALFORMED_LOG"
	}
	return status, body
}
