package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/authoring-mirror/internal/app"
	"github.com/rpggio/authoring-mirror/internal/mcp"
	"github.com/rpggio/authoring-mirror/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer runs the REST API with MCP mounted at /mcp over an in-memory store.
type TestServer struct {
	Server   *httptest.Server
	App      *app.App
	Token    string
	Operator string
}

// New starts a server that accepts token on behalf of operator.
func New(t *testing.T, token, operator string) *TestServer {
	t.Helper()

	a, err := app.Open(":memory:", nil)
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Mirror:   a.Mirror,
			Branches: a.Branches,
			Concepts: a.Concepts,
			Journal:  a.Journal,
		},
		Resolver:      a.APIKeys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Mirror:   a.Mirror,
		Branches: a.Branches,
		Auth:     transport.AuthMiddleware(a.APIKeys),
		MCP:      mcpHandler,
	}))

	ts := &TestServer{
		Server:   server,
		App:      a,
		Token:    token,
		Operator: operator,
	}

	require.NoError(t, a.APIKeys.Add(context.Background(), token, operator, "test key"))

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return ts
}

// Do sends an authenticated request.
func (ts *TestServer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	return ts.Server.Client().Do(req)
}

// ConnectMCP opens an authenticated MCP session over streamable HTTP.
func (ts *TestServer) ConnectMCP(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := &http.Client{Transport: bearerTransport{token: ts.Token, base: http.DefaultTransport}}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
		MaxRetries: -1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
