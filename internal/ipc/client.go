package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/ontop/internal/runtimepath"
)

// Client talks to the running instance over its control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ontop: %w (is `ontop run` running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("ontop error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) command(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// GetStatus retrieves the state of the running instance.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.command(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// ListWindows retrieves the windows the instance can clone.
func (c *Client) ListWindows() ([]WindowInfo, error) {
	resp, err := c.command(CommandListWindows, nil)
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return data.Windows, nil
}

// Clone shows window id, optionally limited to region.
func (c *Client) Clone(id uint32, region *Region) error {
	_, err := c.command(CommandClone, ClonePayload{WindowID: id, Region: region})
	return err
}

// CloneActive clones the active desktop window.
func (c *Client) CloneActive() error {
	_, err := c.command(CommandCloneActive, nil)
	return err
}

// Unclone clears the thumbnail.
func (c *Client) Unclone() error {
	_, err := c.command(CommandUnclone, nil)
	return err
}

// Group cycles the thumbnail among ids.
func (c *Client) Group(ids []uint32) error {
	_, err := c.command(CommandGroup, GroupPayload{WindowIDs: ids})
	return err
}

// SetMode changes display mode flags.
func (c *Client) SetMode(p ModePayload) error {
	_, err := c.command(CommandSetMode, p)
	return err
}

// Fit resizes the window to scale times the thumbnail source.
func (c *Client) Fit(scale float64) error {
	_, err := c.command(CommandFit, FitPayload{Scale: scale})
	return err
}

// SetRegion limits the thumbnail to region; nil shows the whole window.
func (c *Client) SetRegion(region *Region) error {
	_, err := c.command(CommandSetRegion, RegionPayload{Region: region})
	return err
}

// Reset clears the thumbnail and moves the window home.
func (c *Client) Reset() error {
	_, err := c.command(CommandReset, nil)
	return err
}

// ToggleVisible hides or shows the window.
func (c *Client) ToggleVisible() error {
	_, err := c.command(CommandToggleVisible, nil)
	return err
}

// Ping checks if the instance is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
