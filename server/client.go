package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/recipeviz/canvas"
	"github.com/teranos/recipeviz/events"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/metrics"
)

// WebSocket timeout constants following the gorilla chat example
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// Client is one WebSocket connection and the canvas session it owns.
// Only writePump writes to conn.
type Client struct {
	server *Server
	conn   *websocket.Conn
	engine *canvas.Engine
	send   chan interface{}
	events chan events.Event
	id     string

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(s *Server, conn *websocket.Conn, id string) *Client {
	cfg, _ := s.settings()
	c := &Client{
		server: s,
		conn:   conn,
		send:   make(chan interface{}, MaxClientMessageQueueSize),
		events: make(chan events.Event, MaxClientMessageQueueSize),
		id:     id,
		done:   make(chan struct{}),
	}
	c.engine = canvas.New(cfg, canvas.Deps{
		Source:   s.source,
		Resolver: s.newResolver(),
		Logger:   s.logger.Named("canvas"),
	})
	c.engine.Events().Register(id, c.events)
	return c
}

// enqueue queues msg for writePump. A full queue drops the message: frames
// are complete states and the next one supersedes it.
func (c *Client) enqueue(msg interface{}) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.server.logger.Debugw("Client send queue full, dropping message",
			logger.FieldClientID, c.id)
	}
}

// close tears the session down exactly once
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.engine.Events().Unregister(c.id)
		c.engine.Close()
		c.conn.Close()
		c.server.unregister(c)
		metrics.ActiveSessions.Dec()
	})
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(grapherror.New(grapherror.CategoryWebSocket, err, "Malformed message").
				WithSubcategory(grapherror.SubcategoryWSMessage))
			continue
		}
		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		graphErr := grapherror.New(grapherror.CategoryWebSocket, err,
			"WebSocket connection closed unexpectedly").
			WithSubcategory(grapherror.SubcategoryWSRead)
		c.server.logger.Warnw("WebSocket read error",
			append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...)
	}
}

// routeMessage dispatches one client message to the canvas session
func (c *Client) routeMessage(msg *ClientMessage) {
	switch msg.Type {
	case MsgSearch:
		if msg.Search == nil {
			c.sendError(grapherror.Newf(grapherror.CategoryValidation, "", "search message without parameters").
				WithSubcategory(grapherror.SubcategoryValidationTarget))
			return
		}
		if err := c.engine.Start(logger.WithClientID(c.server.ctx, c.id), *msg.Search); err != nil {
			c.sendError(err)
		}
	case MsgCancel:
		c.engine.Cancel()
	case MsgDragStart:
		if p := msg.point(); p != nil {
			c.engine.DragStart(*p)
		}
	case MsgDragMove:
		if p := msg.point(); p != nil {
			c.engine.DragMove(*p)
		}
	case MsgDragEnd:
		c.engine.DragEnd()
	case MsgZoom:
		c.engine.Zoom(msg.Steps, msg.point())
	case MsgZoomTo:
		if msg.Level == nil {
			c.sendError(grapherror.Newf(grapherror.CategoryValidation, "Zoom level is required",
				"zoom_to message without level"))
			return
		}
		c.engine.ZoomTo(*msg.Level)
	case MsgResetView:
		c.engine.ResetView()
	case MsgResize:
		c.engine.Resize(graph.Size{Width: msg.Width, Height: msg.Height})
	case MsgMinimapClick:
		if p := msg.point(); p != nil {
			c.engine.MinimapClick(*p)
		}
	case MsgJumpFirst:
		c.engine.JumpToFirst()
	case MsgPing:
		// Read deadline already extended by the read itself
	default:
		c.server.logger.Debugw("Unknown message type",
			"type", msg.Type,
			logger.FieldClientID, c.id)
	}
}

// sendError reports a rejected message to the client. Session state is unchanged.
func (c *Client) sendError(err error) {
	msg := ErrorMessage{Type: MsgError, Message: grapherror.UIMessage(err)}
	if ge, ok := grapherror.As(err); ok {
		msg.Meta = ge.ToMeta()
	}
	c.server.logger.Debugw("Rejected client message",
		logger.FieldClientID, c.id,
		logger.FieldError, err.Error())
	c.enqueue(msg)
}

// framePump turns session changes into frames and forwards status events.
// While the camera animates it ticks at FrameInterval.
func (c *Client) framePump() {
	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-c.done:
			return
		case <-c.server.ctx.Done():
			return
		case ev := <-c.events:
			c.enqueue(EventMessage{Type: MsgEvent, Event: ev})
		case <-c.engine.Changes():
			c.enqueue(FrameMessage{Type: MsgFrame, Scene: c.engine.Frame()})
			metrics.FramesSent.Inc()
		case now := <-tick:
			c.engine.Tick(now)
		}

		switch animating := c.engine.Animating(); {
		case animating && ticker == nil:
			ticker = time.NewTicker(FrameInterval)
			tick = ticker.C
		case !animating && ticker != nil:
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
}

// writePump writes queued messages and pings to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-c.server.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				graphErr := grapherror.New(grapherror.CategoryWebSocket, err,
					"Failed to send message to client").
					WithSubcategory(grapherror.SubcategoryWSWrite)
				c.server.logger.Warnw("WebSocket write error",
					append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
