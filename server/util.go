package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/teranos/recipeviz/errors"
)

// upgrader creates a WebSocket upgrader checking origins against the
// configured allow list
func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin validates a request origin against server.allowed_origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow requests with no origin header (direct WebSocket clients, testing)
	if origin == "" {
		return true
	}

	// Prefix matching allows any port number
	for _, allowed := range s.allowedOrigins() {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

// isPortAvailable checks if a port is available for binding
func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = listener.Close() // Best-effort check, the real bind may still fail
	return true
}

// findAvailablePort tries the requested port, then the next ten
func findAvailablePort(requestedPort int) (int, error) {
	for i := 0; i <= 10; i++ {
		if port := requestedPort + i; isPortAvailable(port) {
			return port, nil
		}
	}
	return 0, errors.Newf("no available ports found (tried %d-%d)", requestedPort, requestedPort+10)
}
