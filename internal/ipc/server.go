package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// Handler executes control commands against the running instance. Methods
// are called from connection goroutines; implementations hand the work to
// the UI goroutine.
type Handler interface {
	Status() (StatusData, error)
	ListWindows() ([]WindowInfo, error)
	Clone(id uint32, region *Region) error
	CloneActive() error
	Unclone() error
	Group(ids []uint32) error
	SetMode(p ModePayload) error
	Fit(scale float64) error
	SetRegion(region *Region) error
	Reset() error
	ToggleVisible() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on socketPath.
func NewServer(socketPath string, handler Handler) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandClone:
		var p ClonePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid clone payload: %v", err))
		}
		if p.WindowID == 0 {
			return NewErrorResponse("window_id is required")
		}
		return result(s.handler.Clone(p.WindowID, p.Region))
	case CommandCloneActive:
		return result(s.handler.CloneActive())
	case CommandUnclone:
		return result(s.handler.Unclone())
	case CommandGroup:
		var p GroupPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid group payload: %v", err))
		}
		if len(p.WindowIDs) == 0 {
			return NewErrorResponse("window_ids is required")
		}
		return result(s.handler.Group(p.WindowIDs))
	case CommandSetMode:
		var p ModePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid mode payload: %v", err))
		}
		return result(s.handler.SetMode(p))
	case CommandFit:
		var p FitPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid fit payload: %v", err))
		}
		if p.Scale <= 0 {
			return NewErrorResponse("scale must be positive")
		}
		return result(s.handler.Fit(p.Scale))
	case CommandSetRegion:
		var p RegionPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid region payload: %v", err))
		}
		return result(s.handler.SetRegion(p.Region))
	case CommandReset:
		return result(s.handler.Reset())
	case CommandToggleVisible:
		return result(s.handler.ToggleVisible())
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status, err := s.handler.Status()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows() *Response {
	windows, err := s.handler.ListWindows()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}
	if windows == nil {
		windows = []WindowInfo{}
	}

	resp, _ := NewOKResponse(WindowsData{Windows: windows})
	return resp
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}

func result(err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
