package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/authoring-mirror/internal/app"
	"github.com/rpggio/authoring-mirror/internal/config"
	"github.com/rpggio/authoring-mirror/internal/mcp"
	"github.com/rpggio/authoring-mirror/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.Log.Level),
	}))

	a, err := app.Open(cfg.DB.Path, logger)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Mirror:   a.Mirror,
			Branches: a.Branches,
			Concepts: a.Concepts,
			Journal:  a.Journal,
		},
		Resolver:      a.APIKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		if err := runStdioMode(logger, mcpServer); err != nil {
			logger.Error("stdio server error", "error", err)
			a.Close()
			os.Exit(1)
		}
		return
	}
	runHTTPMode(logger, cfg, a, mcpServer)
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or the context is canceled.
	err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && ctx.Err() != nil {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func runHTTPMode(logger *slog.Logger, cfg config.Config, a *app.App, mcpServer *sdkmcp.Server) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	var auth func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(a.APIKeys)
	}
	rest := transport.Config{
		Mirror:   a.Mirror,
		Branches: a.Branches,
		Auth:     auth,
		Logger:   logger,
	}

	withMCP := rest
	withMCP.MCP = mcpHandler
	servers := []*http.Server{{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: transport.NewServer(withMCP),
	}}
	if cfg.API.Port > 0 {
		servers = append(servers, &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.API.Port),
			Handler: transport.NewServer(rest),
		})
	}

	for _, srv := range servers {
		go func() {
			logger.Info("server listening", "addr", srv.Addr, "auth", cfg.Auth.Enabled)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", "addr", srv.Addr, "error", err)
			}
		}()
	}

	waitForShutdown(logger, servers...)
}

func waitForShutdown(logger *slog.Logger, servers ...*http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "addr", srv.Addr, "error", err)
		}
	}
}
