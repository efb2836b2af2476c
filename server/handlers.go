package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/canvas"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/metrics"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/reveal"
	"github.com/teranos/recipeviz/search"
	"github.com/teranos/recipeviz/version"
)

// RenderRequest is the body of the snapshot endpoints. The search fields sit
// at the top level next to the canvas overrides.
type RenderRequest struct {
	search.Request
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Minimap bool    `json:"minimap,omitempty"`
	Palette string  `json:"palette,omitempty"`
}

// HandleWebSocket upgrades the connection and starts a canvas session for it
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}
	if s.ClientCount() >= MaxClients {
		writeError(w, http.StatusServiceUnavailable, "Too many clients")
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		graphErr := grapherror.New(
			grapherror.CategoryWebSocket,
			err,
			"Failed to upgrade WebSocket connection",
		).WithSubcategory(grapherror.SubcategoryWSUpgrade)

		s.logger.Errorw("WebSocket upgrade failed",
			graphErr.ToLogFields()...,
		)
		return
	}

	id := uuid.NewString()
	client := newClient(s, conn, id)
	_, palette := s.settings()

	// Send version and palette BEFORE starting writePump (avoid concurrent writes)
	info := version.Get()
	hello := []interface{}{
		VersionMessage{
			Type:      MsgVersion,
			Version:   info.Version,
			Commit:    info.Short(),
			BuildTime: info.BuildTime,
			ClientID:  id,
		},
		PaletteMessage{Type: MsgPalette, Palette: palette},
	}
	for _, msg := range hello {
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debugw("Failed to send greeting",
				logger.FieldClientID, id,
				logger.FieldError, err,
			)
		}
	}

	if !s.register(client) {
		conn.Close()
		client.engine.Close()
		return
	}
	metrics.ActiveSessions.Inc()
	s.logger.Infow("Client connected",
		logger.FieldClientID, id,
		"remote_addr", r.RemoteAddr,
		"total_clients", s.ClientCount(),
	)

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.framePump()
	}()

	// Initial idle frame so the client can draw before its first search
	client.enqueue(FrameMessage{Type: MsgFrame, Scene: client.engine.Frame()})
}

// HandleHealth reports liveness and build information
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Version:     info.Version,
		Commit:      info.CommitHash,
		BuildTime:   info.BuildTime,
		Clients:     s.ClientCount(),
		ServerState: stateString(s.getState()),
		Palette:     s.Palette().Name,
	})
}

// HandleConfig serves the active configuration as TOML, or with
// ?introspection=true every effective setting and where it came from
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	if r.URL.Query().Get("introspection") == "true" {
		introspection, err := am.GetConfigIntrospection()
		if err != nil {
			s.logger.Warnw("Config introspection failed", logger.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to get config introspection")
			return
		}
		writeJSON(w, http.StatusOK, introspection)
		return
	}

	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()
	data, err := am.Marshal(cfg)
	if err != nil {
		s.logger.Warnw("Config marshal failed", logger.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to encode config")
		return
	}
	w.Header().Set("Content-Type", "application/toml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleRenderSVG runs a search to completion and returns the centred canvas as SVG
func (s *Server) HandleRenderSVG(w http.ResponseWriter, r *http.Request) {
	scene, pal, req, ok := s.capture(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, scene, pal, render.SVGOptions{Minimap: req.Minimap}); err != nil {
		s.logger.Errorw("SVG render failed", logger.FieldError, err)
		writeGraphError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// HandleMinimapPNG runs a search to completion and returns the minimap as PNG
func (s *Server) HandleMinimapPNG(w http.ResponseWriter, r *http.Request) {
	scene, pal, _, ok := s.capture(w, r)
	if !ok {
		return
	}
	if !scene.Minimap.Enabled {
		writeError(w, http.StatusConflict, "Minimap is disabled (minimap.enabled = false)")
		return
	}

	var buf bytes.Buffer
	if err := render.WriteMinimapPNG(&buf, scene.Minimap, pal); err != nil {
		s.logger.Errorw("Minimap render failed", logger.FieldError, err)
		writeGraphError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// capture decodes a RenderRequest and runs it through a throwaway session.
// On failure the response has already been written.
func (s *Server) capture(w http.ResponseWriter, r *http.Request) (render.Scene, render.Palette, RenderRequest, bool) {
	var req RenderRequest
	if !requireMethod(w, r, http.MethodPost) {
		return render.Scene{}, render.Palette{}, req, false
	}
	if err := readJSON(w, r, &req); err != nil {
		return render.Scene{}, render.Palette{}, req, false
	}

	cfg, pal := s.settings()
	if req.Palette != "" {
		p, ok := render.PaletteByName(req.Palette)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown palette "+req.Palette+" (built-in palettes: light, dark)")
			return render.Scene{}, render.Palette{}, req, false
		}
		pal = p
	}
	if req.Width > 0 && req.Height > 0 {
		cfg.Viewport = graph.Size{Width: req.Width, Height: req.Height}
	}

	ctx, cancel := context.WithTimeout(r.Context(), SnapshotTimeout)
	defer cancel()

	scene, err := canvas.Capture(ctx, cfg, canvas.Deps{
		Source:   s.source,
		Resolver: reveal.StaticResolver{},
		Logger:   s.logger.Named("snapshot"),
	}, req.Request)
	if err != nil {
		s.logger.Infow("Snapshot failed",
			logger.FieldTarget, req.Target,
			logger.FieldError, err,
		)
		writeGraphError(w, err)
		return render.Scene{}, render.Palette{}, req, false
	}
	return scene, pal, req, true
}
