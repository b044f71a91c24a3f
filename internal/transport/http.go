package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
)

// maxUploadMemory is the part of a multipart upload kept in memory.
const maxUploadMemory = 32 << 20

// MirrorService defines replay operations needed by the REST API.
type MirrorService interface {
	ReceiveActivity(ctx context.Context, a mirror.Activity) (mirror.OutcomeKind, error)
	ReceiveActivityLog(ctx context.Context, r io.Reader) (mirror.Summary, error)
}

// BranchLister lists the local branch tree.
type BranchLister interface {
	List(ctx context.Context) ([]branch.Branch, error)
}

// Config wires HTTP handlers.
type Config struct {
	Mirror   MirrorService
	Branches BranchLister
	// Auth guards every route except /health when set.
	Auth func(http.Handler) http.Handler
	// MCP is mounted at /mcp when set.
	MCP http.Handler
	// MaxActivityBytes caps a POST /activities body. Zero means
	// mirror.MaxActivitySize.
	MaxActivityBytes int64
	Logger           *slog.Logger
}

// Server serves the REST API.
type Server struct {
	mirror      MirrorService
	branches    BranchLister
	maxActivity int64
	logger      *slog.Logger
}

// ActivityResponse reports how a single activity was handled.
type ActivityResponse struct {
	Outcome string `json:"outcome"`
}

// LogResponse reports a replayed activity log.
type LogResponse struct {
	Summary mirror.Summary `json:"summary"`
}

// BranchesResponse lists branches.
type BranchesResponse struct {
	Branches []branch.Branch `json:"branches"`
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxActivity := cfg.MaxActivityBytes
	if maxActivity <= 0 {
		maxActivity = mirror.MaxActivitySize
	}
	srv := &Server{mirror: cfg.Mirror, branches: cfg.Branches, maxActivity: maxActivity, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}
		r.Post("/activities", srv.handleActivity)
		r.Post("/activities/log", srv.handleActivityLog)
		r.Get("/branches", srv.handleBranches)
		if cfg.MCP != nil {
			r.Handle("/mcp", cfg.MCP)
			r.Handle("/mcp/*", cfg.MCP)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var a mirror.Activity
	body := http.MaxBytesReader(w, r.Body, s.maxActivity)
	if err := json.NewDecoder(body).Decode(&a); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "ACTIVITY_TOO_LARGE",
				fmt.Sprintf("activity exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	kind, err := s.mirror.ReceiveActivity(s.origin(r), a)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Outcome: kind.String()})
}

func (s *Server) handleActivityLog(w http.ResponseWriter, r *http.Request) {
	body, err := uploadedLog(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}
	defer body.Close()

	stream, err := mirror.Decompress(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}
	defer stream.Close()

	sum, err := s.mirror.ReceiveActivityLog(s.origin(r), stream)
	if err != nil {
		s.fail(w, r, err, &sum)
		return
	}
	writeJSON(w, http.StatusOK, LogResponse{Summary: sum})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.branches.List(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if branches == nil {
		branches = []branch.Branch{}
	}
	writeJSON(w, http.StatusOK, BranchesResponse{Branches: branches})
}

// uploadedLog returns the "file" part of a multipart upload, or the raw body.
func uploadedLog(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("multipart field %q is required", "file")
		}
		return nil, fmt.Errorf("read multipart file: %w", err)
	}
	return file, nil
}

func (s *Server) origin(r *http.Request) context.Context {
	origin := "rest"
	if op, ok := OperatorFromContext(r.Context()); ok && op != "" {
		origin += ":" + op
	}
	return mirror.WithOrigin(r.Context(), origin)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, sum *mirror.Summary) {
	status, body := errorBody(err)
	body.Summary = sum
	if status >= http.StatusInternalServerError {
		reqID, _ := RequestIDFromContext(r.Context())
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", reqID, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: body})
}
