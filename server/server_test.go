package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/events"
	"github.com/teranos/recipeviz/internal/httpclient"
	rvtest "github.com/teranos/recipeviz/internal/testing"
	"github.com/teranos/recipeviz/internal/util"
	"github.com/teranos/recipeviz/render"
	"github.com/teranos/recipeviz/search"
)

// wireMessage decodes any outbound message
type wireMessage struct {
	Type     string            `json:"type"`
	Scene    render.Scene      `json:"scene"`
	Event    events.Event      `json:"event"`
	Message  string            `json:"message"`
	Meta     map[string]string `json:"meta"`
	Palette  render.Palette    `json:"palette"`
	ClientID string            `json:"client_id"`
}

type testServer struct {
	*Server
	backend *rvtest.FakeBackend
	http    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())

	cfg := am.Defaults()
	cfg.Search.BackendURL = backend.URL
	cfg.Search.ImageBaseURL = backend.ImageBaseURL()
	cfg.Canvas.RecenterDurationMS = 0

	hc := httpclient.Wrap(backend.Client())
	s, err := New(Options{
		Config:     cfg,
		Source:     search.NewClient(search.ClientConfig{BackendURL: backend.URL}, hc),
		HTTPClient: hc,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { s.Stop() })
	return &testServer{Server: s, backend: backend, http: ts}
}

func (ts *testServer) dial(t *testing.T, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until match returns true or the deadline passes
func readUntil(t *testing.T, conn *websocket.Conn, match func(wireMessage) bool) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wireMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestWebSocketGreetsWithVersionAndPalette(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, nil)

	var version, palette wireMessage
	require.NoError(t, conn.ReadJSON(&version))
	require.NoError(t, conn.ReadJSON(&palette))

	assert.Equal(t, MsgVersion, version.Type)
	assert.NotEmpty(t, version.ClientID)
	assert.Equal(t, MsgPalette, palette.Type)
	assert.Equal(t, "light", palette.Palette.Name)

	idle := readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgFrame })
	assert.Equal(t, render.StatusIdle, idle.Scene.Status)
	assert.Eventually(t, func() bool { return ts.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketSearchRevealsGraph(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, nil)

	send(t, conn, ClientMessage{Type: MsgSearch, Search: &search.Request{Target: "Steam", DelayMS: 1}})

	var kinds []events.Kind
	frame := readUntil(t, conn, func(m wireMessage) bool {
		if m.Type == MsgEvent {
			kinds = append(kinds, m.Event.Kind)
		}
		return m.Type == MsgFrame && m.Scene.Status == render.StatusComplete
	})
	assert.Len(t, frame.Scene.Nodes, 3)
	assert.Len(t, frame.Scene.Edges, 2)
	assert.Equal(t, 3, frame.Scene.Revealed)
	assert.Contains(t, kinds, events.KindSearchStarted)
	assert.Contains(t, kinds, events.KindDatasetReceived)

	// Camera input produces a fresh frame with a moved viewport
	send(t, conn, ClientMessage{Type: MsgDragStart, X: util.Ptr(100.0), Y: util.Ptr(100.0)})
	send(t, conn, ClientMessage{Type: MsgDragMove, X: util.Ptr(150.0), Y: util.Ptr(120.0)})
	send(t, conn, ClientMessage{Type: MsgDragEnd})
	moved := readUntil(t, conn, func(m wireMessage) bool {
		return m.Type == MsgFrame && m.Scene.Viewport.Offset != frame.Scene.Viewport.Offset
	})
	assert.Equal(t, render.StatusComplete, moved.Scene.Status)
}

func TestWebSocketRejectsInvalidSearch(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, nil)

	send(t, conn, ClientMessage{Type: MsgSearch, Search: &search.Request{Target: "Steam", DelayMS: -5}})
	msg := readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgError })
	assert.NotEmpty(t, msg.Message)
	assert.Equal(t, "validation", msg.Meta["category"])

	send(t, conn, ClientMessage{Type: MsgSearch})
	msg = readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgError })
	assert.Equal(t, "validation", msg.Meta["category"])
	assert.Empty(t, ts.backend.Requests())
}

func TestWebSocketZoomTo(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, nil)
	readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgFrame })

	send(t, conn, ClientMessage{Type: MsgZoomTo, Level: util.Ptr(2)})
	frame := readUntil(t, conn, func(m wireMessage) bool {
		return m.Type == MsgFrame && m.Scene.Viewport.Scale != 1
	})
	assert.InDelta(t, 1.44, frame.Scene.Viewport.Scale, 1e-9)

	send(t, conn, ClientMessage{Type: MsgZoomTo})
	msg := readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgError })
	assert.Equal(t, "validation", msg.Meta["category"])
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestApplyConfigPushesPalette(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, nil)
	readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgFrame })

	cfg := am.Defaults()
	cfg.Canvas.Palette = "dark"
	require.NoError(t, ts.applyConfig(cfg))

	msg := readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgPalette })
	assert.Equal(t, "dark", msg.Palette.Name)
	assert.Equal(t, "dark", ts.Palette().Name)

	cfg = am.Defaults()
	cfg.Canvas.Palette = "sepia"
	assert.Error(t, ts.applyConfig(cfg))
	assert.Equal(t, "dark", ts.Palette().Name)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "running", health.ServerState)
	assert.Equal(t, "light", health.Palette)

	resp, err = http.Get(ts.http.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "recipeviz_active_sessions")
}

func TestConfigEndpointServesTOML(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/api/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), ts.backend.URL)
	assert.Contains(t, string(body), "[canvas]")
}

func TestRenderSVG(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.http.URL+"/api/render.svg", map[string]interface{}{
		"target":   "Steam",
		"delay_ms": 1,
		"minimap":  true,
		"width":    400,
		"height":   300,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<svg")
	assert.Contains(t, string(body), "Steam")
}

func TestRenderSVGErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.http.URL+"/api/render.svg", map[string]interface{}{"target": "", "delay_ms": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.http.URL+"/api/render.svg", map[string]interface{}{"target": "Steam", "palette": "sepia"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ts.backend.SetStatus(http.StatusInternalServerError)
	resp = post(t, ts.http.URL+"/api/render.svg", map[string]interface{}{"target": "Steam", "delay_ms": 1})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	get, err := http.Get(ts.http.URL + "/api/render.svg")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)
}

func TestMinimapPNG(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.http.URL+"/api/minimap.png", map[string]interface{}{"target": "Steam", "delay_ms": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestStopRejectsNewSessions(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, nil)
	readUntil(t, conn, func(m wireMessage) bool { return m.Type == MsgFrame })

	require.NoError(t, ts.Stop())
	assert.Equal(t, ServerStateStopped, ts.getState())
	assert.Eventually(t, func() bool { return ts.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.http.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
