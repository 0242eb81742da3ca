package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP runs the MCP server on the given transport. stdio serves until
// stdin closes; sse serves on port until ctx is done.
func ServeMCP(ctx context.Context, app *App, transport string, port int) error {
	srv := app.MCPServer()

	switch transport {
	case TransportStdio:
		// Stdout carries JSON-RPC.
		log.SetOutput(os.Stderr)
		app.Logger.Info("Starting triage MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		addr := fmt.Sprintf(":%d", port)
		baseURL := fmt.Sprintf("http://localhost:%d", port)
		app.Logger.Info("Starting triage MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, addr, baseURL); err != nil {
			return err
		}
		app.Logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q, supported: %s, %s", transport, TransportStdio, TransportSSE)
	}
}
