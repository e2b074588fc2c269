package mcp

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// RegionInput is a rectangle in source window pixels.
type RegionInput struct {
	X      int `json:"x" jsonschema:"Left edge of the region"`
	Y      int `json:"y" jsonschema:"Top edge of the region"`
	Width  int `json:"width" jsonschema:"required,Region width, greater than zero"`
	Height int `json:"height" jsonschema:"required,Region height, greater than zero"`
}

// WindowInfo describes one clonable window.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
	Class string `json:"class,omitempty"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// CloneWindowInput is the input for the clone_window tool.
type CloneWindowInput struct {
	WindowID uint32       `json:"window_id" jsonschema:"required,Window id from list_windows"`
	Region   *RegionInput `json:"region,omitempty" jsonschema:"Optional part of the window to show"`
}

// GroupInput is the input for the group tool.
type GroupInput struct {
	WindowIDs []uint32 `json:"window_ids" jsonschema:"required,Window ids from list_windows in cycle order"`
}

// SetModeInput is the input for the set_mode tool.
type SetModeInput struct {
	Fullscreen      *bool `json:"fullscreen,omitempty" jsonschema:"Cover the current screen with the thumbnail"`
	ClickThrough    *bool `json:"click_through,omitempty" jsonschema:"Let pointer input pass through the window"`
	ClickForwarding *bool `json:"click_forwarding,omitempty" jsonschema:"Forward clicks on the thumbnail to the source window"`
}

// FitInput is the input for the fit tool.
type FitInput struct {
	Scale float64 `json:"scale" jsonschema:"required,Multiple of the source size, greater than zero"`
}

// SetRegionInput is the input for the set_region tool.
type SetRegionInput struct {
	Region *RegionInput `json:"region,omitempty" jsonschema:"Part of the window to show; omit for the whole window"`
}

// ActionOutput is the output for tools that change state.
type ActionOutput struct {
	Status StatusOutput `json:"status"`
}

// StatusOutput is the output for the status tool.
type StatusOutput struct {
	Showing         bool         `json:"showing"`
	Target          uint32       `json:"target,omitempty"`
	TargetTitle     string       `json:"target_title,omitempty"`
	Region          *RegionInput `json:"region,omitempty"`
	Mode            string       `json:"mode"`
	ClickThrough    bool         `json:"click_through"`
	ClickForwarding bool         `json:"click_forwarding"`
	Visible         bool         `json:"visible"`
	GroupActive     bool         `json:"group_active"`
	Group           []uint32     `json:"group,omitempty"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
}
