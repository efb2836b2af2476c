// Package server hosts canvas sessions over WebSocket and serves one-shot
// SVG and PNG snapshots over HTTP.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/canvas"
	"github.com/teranos/recipeviz/internal/httpclient"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/reveal"
	"github.com/teranos/recipeviz/search"
)

// Options configures a Server. Zero fields are derived from Config.
type Options struct {
	Config     *am.Config         // nil = am.Defaults()
	Source     search.Source      // nil = HTTP client for search.backend_url
	HTTPClient *httpclient.Client // Shared by the search client and asset resolvers
	Logger     *zap.SugaredLogger
}

// Server owns every connected canvas session
type Server struct {
	source search.Source
	http   *httpclient.Client
	logger *zap.SugaredLogger

	// Reloadable settings, guarded by mu
	mu        sync.RWMutex
	cfg       *am.Config
	canvasCfg canvas.Config
	palette   render.Palette

	clients map[*Client]bool

	mux           *http.ServeMux
	muxOnce       sync.Once
	httpServer    *http.Server
	configWatcher *am.ConfigWatcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	state  atomic.Int32
}

// New creates a server from opts. The configuration is validated and the
// palette resolved up front so a bad config fails at startup.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = am.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	palette, err := render.ResolvePalette(cfg.Canvas.Palette, cfg.Canvas.PalettePath)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("server")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = httpclient.New(httpclient.Options{})
	}
	src := opts.Source
	if src == nil {
		src = search.NewClient(search.ClientConfig{
			BackendURL: cfg.Search.BackendURL,
			Timeout:    time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
		}, hc)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		source:    src,
		http:      hc,
		logger:    log,
		cfg:       cfg,
		canvasCfg: canvas.ConfigFromAM(cfg),
		palette:   palette,
		clients:   make(map[*Client]bool),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.state.Store(int32(ServerStateRunning))
	return s, nil
}

// newResolver builds the asset resolver for one session
func (s *Server) newResolver() reveal.Resolver {
	s.mu.RLock()
	rc := s.cfg.Reveal
	s.mu.RUnlock()

	if !rc.ResolveAssets {
		return reveal.StaticResolver{}
	}
	return reveal.NewHTTPResolver(s.http, reveal.HTTPResolverConfig{
		Timeout:           time.Duration(rc.AssetTimeoutMS) * time.Millisecond,
		RequestsPerSecond: rc.AssetRequestsPerSecond,
		Burst:             rc.AssetBurst,
	})
}

// settings returns the current canvas config and palette
func (s *Server) settings() (canvas.Config, render.Palette) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvasCfg, s.palette
}

func (s *Server) allowedOrigins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.GetServerAllowedOrigins()
}

// Palette returns the active palette
func (s *Server) Palette() render.Palette {
	_, p := s.settings()
	return p
}

// ClientCount returns the number of connected sessions
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// applyConfig swaps in reloadable settings. Sessions already open keep
// their canvas settings; new sessions and snapshots use the new ones. The
// palette is pushed to every connected client.
func (s *Server) applyConfig(cfg *am.Config) error {
	palette, err := render.ResolvePalette(cfg.Canvas.Palette, cfg.Canvas.PalettePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.canvasCfg = canvas.ConfigFromAM(cfg)
	s.palette = palette
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	logger.SetTheme(cfg.Server.LogTheme)
	for _, c := range clients {
		c.enqueue(PaletteMessage{Type: MsgPalette, Palette: palette})
	}
	s.logger.Infow("Configuration applied",
		"palette", palette.Name,
		"clients", len(clients))
	return nil
}

// register adds c unless the client limit is reached
func (s *Server) register(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) >= MaxClients || s.getState() != ServerStateRunning {
		return false
	}
	s.clients[c] = true
	return true
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	total := len(s.clients)
	s.mu.Unlock()

	if ok {
		s.logger.Infow("Client disconnected",
			logger.FieldClientID, c.id,
			"total_clients", total)
	}
}
