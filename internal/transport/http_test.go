package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/authoring-mirror/internal/domain/branch"
	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	activities []mirror.Activity
	origins    []string
	log        string
	err        error
	summary    mirror.Summary
}

func (f *fakeMirror) ReceiveActivity(ctx context.Context, a mirror.Activity) (mirror.OutcomeKind, error) {
	f.activities = append(f.activities, a)
	f.origins = append(f.origins, mirror.OriginFromContext(ctx))
	if f.err != nil {
		return mirror.OutcomeUnrecognized, f.err
	}
	return mirror.Classify(a).Kind, nil
}

func (f *fakeMirror) ReceiveActivityLog(ctx context.Context, r io.Reader) (mirror.Summary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return mirror.Summary{}, err
	}
	f.log = string(data)
	f.origins = append(f.origins, mirror.OriginFromContext(ctx))
	return f.summary, f.err
}

type fakeBranches []branch.Branch

func (f fakeBranches) List(context.Context) ([]branch.Branch, error) { return f, nil }

func newTestServer(t *testing.T, m *fakeMirror, auth func(http.Handler) http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(Config{
		Mirror:   m,
		Branches: fakeBranches{{Path: "MAIN"}, {Path: "MAIN/A", Parent: "MAIN"}},
		Auth:     auth,
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPServer_Health(t *testing.T) {
	server := newTestServer(t, &fakeMirror{}, AuthMiddleware(&testResolver{}))

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestHTTPServer_PostActivity(t *testing.T) {
	m := &fakeMirror{}
	resolver := &testResolver{tokenToOperator: map[string]string{"token": "ops"}}
	server := newTestServer(t, m, AuthMiddleware(resolver))

	body := `{"branchPath":"MAIN/A","commitComment":"alice performed merge of MAIN to MAIN/A"}`
	req, err := http.NewRequest(http.MethodPost, server.URL+"/activities", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ActivityResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "branch_operation", out.Outcome)
	require.Len(t, m.activities, 1)
	require.Equal(t, []string{"rest:ops"}, m.origins)
}

func TestHTTPServer_PostActivityUnauthorized(t *testing.T) {
	m := &fakeMirror{}
	server := newTestServer(t, m, AuthMiddleware(&testResolver{}))

	resp, err := http.Post(server.URL+"/activities", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, m.activities)
}

func TestHTTPServer_PostActivityTooLarge(t *testing.T) {
	m := &fakeMirror{}
	server := httptest.NewServer(NewServer(Config{
		Mirror:           m,
		Branches:         fakeBranches{},
		MaxActivityBytes: 64,
	}))
	t.Cleanup(server.Close)

	body := `{"branchPath":"MAIN","commitComment":"` + strings.Repeat("x", 256) + `"}`
	resp, err := http.Post(server.URL+"/activities", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "ACTIVITY_TOO_LARGE", out.Error.Code)
	require.Empty(t, m.activities)
}

func TestHTTPServer_PostActivityErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest, code: "INVALID_JSON"},
		{name: "missing branch", body: `{}`, err: mirror.ErrMissingBranchPath, status: http.StatusUnprocessableEntity, code: "MISSING_BRANCH_PATH"},
		{name: "inconsistent", body: `{"branchPath":"MAIN"}`, err: fmt.Errorf("%w: x", mirror.ErrInconsistentEvent), status: http.StatusUnprocessableEntity, code: "INCONSISTENT_EVENT"},
		{name: "store failure", body: `{"branchPath":"MAIN"}`, err: fmt.Errorf("disk"), status: http.StatusInternalServerError, code: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &fakeMirror{err: tt.err}, nil)

			resp, err := http.Post(server.URL+"/activities", "application/json", bytes.NewBufferString(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)

			var out ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			require.Equal(t, tt.code, out.Error.Code)
		})
	}
}

func TestHTTPServer_PostLogRawGzip(t *testing.T) {
	m := &fakeMirror{summary: mirror.Summary{Lines: 1, Activities: 1, Unrecognized: 1}}
	server := newTestServer(t, m, nil)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"branchPath":"MAIN"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp, err := http.Post(server.URL+"/activities/log", "application/octet-stream", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out LogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, m.summary, out.Summary)
	require.Equal(t, `{"branchPath":"MAIN"}`+"\n", m.log)
	require.Equal(t, []string{"rest"}, m.origins)
}

func TestHTTPServer_PostLogMultipart(t *testing.T) {
	m := &fakeMirror{}
	server := newTestServer(t, m, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "activity.log")
	require.NoError(t, err)
	_, err = part.Write([]byte("line one\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/activities/log", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "line one\n", m.log)
}

func TestHTTPServer_PostLogMultipartMissingFile(t *testing.T) {
	server := newTestServer(t, &fakeMirror{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/activities/log", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_PostLogPartialFailure(t *testing.T) {
	m := &fakeMirror{
		summary: mirror.Summary{Lines: 2, Activities: 1, ContentChanges: 1},
		err:     &mirror.LineError{Line: 2, Err: fmt.Errorf("bad json")},
	}
	server := newTestServer(t, m, nil)

	resp, err := http.Post(server.URL+"/activities/log", "text/plain", bytes.NewBufferString("x\ny\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "MALFORMED_LOG", out.Error.Code)
	require.Equal(t, 2, out.Error.Line)
	require.NotNil(t, out.Error.Summary)
	require.Equal(t, 1, out.Error.Summary.Activities)
}

func TestHTTPServer_Branches(t *testing.T) {
	server := newTestServer(t, &fakeMirror{}, nil)

	resp, err := http.Get(server.URL + "/branches")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out BranchesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Branches, 2)
	require.Equal(t, "MAIN/A", out.Branches[1].Path)
}
