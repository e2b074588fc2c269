package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandListWindows   CommandType = "LIST_WINDOWS"
	CommandClone         CommandType = "CLONE"
	CommandCloneActive   CommandType = "CLONE_ACTIVE"
	CommandUnclone       CommandType = "UNCLONE"
	CommandGroup         CommandType = "GROUP"
	CommandSetMode       CommandType = "SET_MODE"
	CommandFit           CommandType = "FIT"
	CommandSetRegion     CommandType = "SET_REGION"
	CommandReset         CommandType = "RESET"
	CommandToggleVisible CommandType = "TOGGLE_VISIBLE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Region is a rectangle in target window coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Showing         bool     `json:"showing"`
	Target          uint32   `json:"target,omitempty"`
	TargetTitle     string   `json:"target_title,omitempty"`
	Region          *Region  `json:"region,omitempty"`
	Mode            string   `json:"mode"`
	ClickThrough    bool     `json:"click_through"`
	ClickForwarding bool     `json:"click_forwarding"`
	Visible         bool     `json:"visible"`
	GroupActive     bool     `json:"group_active"`
	Group           []uint32 `json:"group,omitempty"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	UptimeSeconds   int64    `json:"uptime_seconds"`
}

// WindowInfo describes one clonable window.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
	Class string `json:"class,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// ClonePayload represents the payload for CLONE
type ClonePayload struct {
	WindowID uint32  `json:"window_id"`
	Region   *Region `json:"region,omitempty"`
}

// GroupPayload represents the payload for GROUP
type GroupPayload struct {
	WindowIDs []uint32 `json:"window_ids"`
}

// ModePayload represents the payload for SET_MODE. Nil fields are left unchanged.
type ModePayload struct {
	Fullscreen      *bool `json:"fullscreen,omitempty"`
	ClickThrough    *bool `json:"click_through,omitempty"`
	ClickForwarding *bool `json:"click_forwarding,omitempty"`
}

// FitPayload represents the payload for FIT
type FitPayload struct {
	Scale float64 `json:"scale"`
}

// RegionPayload represents the payload for SET_REGION. A nil region shows
// the whole window.
type RegionPayload struct {
	Region *Region `json:"region,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
