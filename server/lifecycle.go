package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/logger"
)

// readHeaderTimeout bounds slow clients sending request headers
const readHeaderTimeout = 10 * time.Second

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Start serves HTTP on port, or the next free port within ten of it.
// It blocks until Stop is called.
func (s *Server) Start(port int) error {
	actualPort, err := findAvailablePort(port)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}
	if actualPort != port {
		s.logger.Infow("Port in use, using alternative",
			"requested_port", port,
			"actual_port", actualPort,
		)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", actualPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Infow("Server ready",
		logger.FieldURL, fmt.Sprintf("http://localhost:%d", actualPort),
		logger.FieldPort, actualPort,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "HTTP server on port %d failed", actualPort)
	}
	return nil
}

// WatchConfig reloads configPath on change and applies it to the server
func (s *Server) WatchConfig(configPath string) error {
	watcher, err := am.NewConfigWatcher(configPath)
	if err != nil {
		return err
	}
	watcher.OnReload(s.applyConfig)
	watcher.Start()
	am.SetGlobalWatcher(watcher)
	s.configWatcher = watcher
	s.logger.Infow("Watching config for changes", "path", configPath)
	return nil
}

// Stop gracefully shuts down the server and cleans up resources
func (s *Server) Stop() error {
	if s.getState() == ServerStateStopped {
		return nil
	}
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	// Close all client connections BEFORE cancelling context
	// This ensures readPump/writePump exit cleanly before context cancellation
	s.mu.Lock()
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
	}
	s.mu.Unlock()

	if len(clientsToClose) > 0 {
		s.logger.Infow("Closing client connections", "count", len(clientsToClose))
		for _, client := range clientsToClose {
			client.conn.Close() // Close connection to unblock readPump
		}
	}

	// Cancel context to stop in-flight searches and the pumps
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out, forcing exit",
			"timeout", ShutdownTimeout,
		)
	}

	var shutdownErr error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = errors.Wrap(err, "HTTP server shutdown failed")
		}
	}

	if s.configWatcher != nil {
		if err := s.configWatcher.Stop(); err != nil {
			s.logger.Warnw("Failed to stop config watcher", logger.FieldError, err)
		} else {
			s.logger.Infow("Config watcher stopped")
		}
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete")
	return shutdownErr
}
