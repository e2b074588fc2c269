package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/ontop/internal/ipc"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.ctl.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		out.Windows = append(out.Windows, WindowInfo{ID: w.ID, Title: w.Title, Class: w.Class})
	}
	return nil, out, nil
}

func (s *Server) handleCloneWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloneWindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.WindowID == 0 {
		return nil, ActionOutput{}, fmt.Errorf("window_id is required")
	}
	region, err := toRegion(args.Region)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return s.act(func() error { return s.ctl.Clone(args.WindowID, region) })
}

func (s *Server) handleCloneActive(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.act(s.ctl.CloneActive)
}

func (s *Server) handleUnclone(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.act(s.ctl.Unclone)
}

func (s *Server) handleGroup(_ context.Context, _ *mcpsdk.CallToolRequest, args GroupInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if len(args.WindowIDs) == 0 {
		return nil, ActionOutput{}, fmt.Errorf("window_ids must name at least one window")
	}
	return s.act(func() error { return s.ctl.Group(args.WindowIDs) })
}

func (s *Server) handleSetMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetModeInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Fullscreen == nil && args.ClickThrough == nil && args.ClickForwarding == nil {
		return nil, ActionOutput{}, fmt.Errorf("set at least one of fullscreen, click_through, click_forwarding")
	}
	p := ipc.ModePayload{
		Fullscreen:      args.Fullscreen,
		ClickThrough:    args.ClickThrough,
		ClickForwarding: args.ClickForwarding,
	}
	return s.act(func() error { return s.ctl.SetMode(p) })
}

func (s *Server) handleFit(_ context.Context, _ *mcpsdk.CallToolRequest, args FitInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if !(args.Scale > 0) {
		return nil, ActionOutput{}, fmt.Errorf("scale must be greater than zero, got %v", args.Scale)
	}
	return s.act(func() error { return s.ctl.Fit(args.Scale) })
}

func (s *Server) handleSetRegion(_ context.Context, _ *mcpsdk.CallToolRequest, args SetRegionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	region, err := toRegion(args.Region)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return s.act(func() error { return s.ctl.SetRegion(region) })
}

func (s *Server) handleReset(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.act(s.ctl.Reset)
}

func (s *Server) handleToggleVisible(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.act(s.ctl.ToggleVisible)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, statusOutput(st), nil
}

// act runs fn and answers with the resulting status.
func (s *Server) act(fn func() error) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := fn(); err != nil {
		return nil, ActionOutput{}, err
	}
	st, err := s.ctl.GetStatus()
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{Status: statusOutput(st)}, nil
}

func toRegion(r *RegionInput) (*ipc.Region, error) {
	if r == nil {
		return nil, nil
	}
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("region must have a positive size, got %dx%d", r.Width, r.Height)
	}
	return &ipc.Region{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, nil
}

func statusOutput(st *ipc.StatusData) StatusOutput {
	out := StatusOutput{
		Showing:         st.Showing,
		Target:          st.Target,
		TargetTitle:     st.TargetTitle,
		Mode:            st.Mode,
		ClickThrough:    st.ClickThrough,
		ClickForwarding: st.ClickForwarding,
		Visible:         st.Visible,
		GroupActive:     st.GroupActive,
		Group:           st.Group,
		Width:           st.Width,
		Height:          st.Height,
		UptimeSeconds:   st.UptimeSeconds,
	}
	if r := st.Region; r != nil {
		out.Region = &RegionInput{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return out
}
