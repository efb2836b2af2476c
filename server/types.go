package server

import (
	"time"

	"github.com/teranos/recipeviz/events"
	"github.com/teranos/recipeviz/graph"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/search"
)

// Server operational constants
const (
	// MaxClients is the maximum number of concurrent canvas sessions
	MaxClients = 100
	// MaxClientMessageQueueSize is the size of per-client outbound queues
	MaxClientMessageQueueSize = 256
	// ShutdownTimeout is how long to wait for sessions to drain on Stop
	ShutdownTimeout = 10 * time.Second
	// FrameInterval paces camera animation frames (~60 fps)
	FrameInterval = 16 * time.Millisecond
	// SnapshotTimeout bounds one-shot render requests
	SnapshotTimeout = 60 * time.Second
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// Inbound message types
const (
	MsgSearch       = "search"
	MsgCancel       = "cancel"
	MsgDragStart    = "drag_start"
	MsgDragMove     = "drag_move"
	MsgDragEnd      = "drag_end"
	MsgZoom         = "zoom"
	MsgZoomTo       = "zoom_to"
	MsgResetView    = "reset_view"
	MsgResize       = "resize"
	MsgMinimapClick = "minimap_click"
	MsgJumpFirst    = "jump_first"
	MsgPing         = "ping"
)

// Outbound message types
const (
	MsgFrame   = "frame"
	MsgEvent   = "event"
	MsgError   = "error"
	MsgVersion = "version"
	MsgPalette = "palette"
)

// ClientMessage is one message from a canvas client
type ClientMessage struct {
	Type string `json:"type"`

	// search
	Search *search.Request `json:"search,omitempty"`

	// pointer input (screen space for drags and zoom focus, inset space for minimap clicks)
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// zoom: positive zooms in
	Steps int `json:"steps,omitempty"`

	// zoom_to: absolute level, clamped to the configured range
	Level *int `json:"level,omitempty"`

	// resize
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// point returns the message's coordinates, or nil when either is missing
func (m ClientMessage) point() *graph.Point {
	if m.X == nil || m.Y == nil {
		return nil
	}
	return &graph.Point{X: *m.X, Y: *m.Y}
}

// FrameMessage carries a composed scene to the client
type FrameMessage struct {
	Type  string       `json:"type"`
	Scene render.Scene `json:"scene"`
}

// EventMessage carries one status log line
type EventMessage struct {
	Type  string       `json:"type"`
	Event events.Event `json:"event"`
}

// ErrorMessage reports a rejected client message
type ErrorMessage struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// PaletteMessage tells the client which colours to draw with
type PaletteMessage struct {
	Type    string         `json:"type"`
	Palette render.Palette `json:"palette"`
}

// VersionMessage is sent once when a client connects
type VersionMessage struct {
	Type      string `json:"type"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	ClientID  string `json:"client_id"`
}

// HealthResponse is served on /health
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildTime   string `json:"build_time"`
	Clients     int    `json:"clients"`
	ServerState string `json:"server_state"`
	Palette     string `json:"palette"`
}
