// Package mcp exposes the running thumbnail window to MCP clients over stdio.
// Every tool is a thin call over the control socket.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/ontop/internal/ipc"
)

const (
	ServerName    = "ontop"
	ServerVersion = "0.1.0"
)

// Controller is the subset of the control client the tools use.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]ipc.WindowInfo, error)
	Clone(id uint32, region *ipc.Region) error
	CloneActive() error
	Unclone() error
	Group(ids []uint32) error
	SetMode(p ipc.ModePayload) error
	Fit(scale float64) error
	SetRegion(region *ipc.Region) error
	Reset() error
	ToggleVisible() error
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for ontop.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
}

// NewServer creates a server that drives the instance behind ctl. A nil ctl
// uses the default control socket.
func NewServer(ctl Controller) *Server {
	if ctl == nil {
		ctl = ipc.NewClient()
	}
	s := &Server{ctl: ctl}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the windows the running ontop instance can clone, front to back. Use the returned id with clone_window or group.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "clone_window",
		Description: "Show a live thumbnail of a window in the always-on-top ontop window. Optionally limit the thumbnail to a region of the source window. Ends group mode.",
	}, s.handleCloneWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "clone_active",
		Description: "Clone the window that currently has keyboard focus.",
	}, s.handleCloneActive)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unclone",
		Description: "Stop showing the thumbnail and end group mode.",
	}, s.handleUnclone)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "group",
		Description: "Cycle the thumbnail among two or more windows. The group advances on the group hot key or when the shown window is activated. A single id clones it.",
	}, s.handleGroup)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_mode",
		Description: "Change display flags. Omitted flags are left as they are. Fullscreen needs a thumbnail. Click-through lets pointer input pass to the windows below; holding Alt restores it.",
	}, s.handleSetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "fit",
		Description: "Resize the window to scale times the size of the thumbnail source (0.5 is half size).",
	}, s.handleFit)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_region",
		Description: "Limit the thumbnail to a rectangle of the source window, in source window pixels. Omit the rectangle to show the whole window again.",
	}, s.handleSetRegion)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reset",
		Description: "Clear the thumbnail and every mode, and move the window to the top-left of the primary screen.",
	}, s.handleReset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_visible",
		Description: "Hide the ontop window, or show it again when hidden.",
	}, s.handleToggleVisible)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "status",
		Description: "Report what the ontop window is showing, its mode flags, size and group.",
	}, s.handleStatus)
}
