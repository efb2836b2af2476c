// Package events carries the status stream of a canvas session: search
// started, dataset received, per-node asset failures, completion and errors.
// Clients render it as a terminal-style log next to the canvas.
package events

import (
	"fmt"
	"time"

	"github.com/teranos/recipeviz/sym"
)

// Kind identifies an event
type Kind string

const (
	KindSearchStarted   Kind = "search_started"
	KindDatasetReceived Kind = "dataset_received"
	KindNodeFailed      Kind = "node_failed"
	KindRevealComplete  Kind = "reveal_complete"
	KindError           Kind = "error"
)

// Event is one status log line
type Event struct {
	Kind       Kind                   `json:"kind"`
	Glyph      string                 `json:"glyph"`
	Timestamp  time.Time              `json:"timestamp"`
	Generation uint64                 `json:"generation"`
	SearchID   string                 `json:"search_id,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Level maps the kind onto a log level name
func (e Event) Level() string {
	switch e.Kind {
	case KindError:
		return "ERROR"
	case KindNodeFailed:
		return "WARN"
	default:
		return "INFO"
	}
}

func newEvent(kind Kind, gen uint64, searchID, msg string, fields map[string]interface{}) Event {
	return Event{
		Kind:       kind,
		Glyph:      sym.For(string(kind)),
		Timestamp:  time.Now(),
		Generation: gen,
		SearchID:   searchID,
		Message:    msg,
		Fields:     fields,
	}
}

// SearchStarted reports the parameters of a new search
func SearchStarted(gen uint64, searchID, target, method, option string, delayMS int) Event {
	return newEvent(KindSearchStarted, gen, searchID,
		fmt.Sprintf("Searching for %s (method: %s, option: %s)", target, method, option),
		map[string]interface{}{
			"target":   target,
			"method":   method,
			"option":   option,
			"delay_ms": delayMS,
		})
}

// DatasetReceived reports the size of the dataset and the backend's own stats
func DatasetReceived(gen uint64, searchID string, nodes, edges, dropped, nodesVisited, executionMS int, elapsed time.Duration) Event {
	fields := map[string]interface{}{
		"nodes":      nodes,
		"edges":      edges,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if dropped > 0 {
		fields["dropped_lines"] = dropped
	}
	msg := fmt.Sprintf("Received %d nodes and %d edges in %dms", nodes, edges, elapsed.Milliseconds())
	if nodesVisited > 0 {
		fields["nodes_visited"] = nodesVisited
		msg += fmt.Sprintf(", nodes visited: %d", nodesVisited)
	}
	if executionMS > 0 {
		fields["execution_ms"] = executionMS
		msg += fmt.Sprintf(", server execution time: %dms", executionMS)
	}
	return newEvent(KindDatasetReceived, gen, searchID, msg, fields)
}

// NodeFailed reports a node revealed with a placeholder
func NodeFailed(gen uint64, searchID string, nodeID int, name, reason string) Event {
	return newEvent(KindNodeFailed, gen, searchID,
		fmt.Sprintf("Image for %s could not be loaded", name),
		map[string]interface{}{
			"node_id": nodeID,
			"name":    name,
			"reason":  reason,
		})
}

// RevealComplete reports the end of a reveal
func RevealComplete(gen uint64, searchID string, revealed, failed int, elapsed time.Duration) Event {
	return newEvent(KindRevealComplete, gen, searchID,
		fmt.Sprintf("Visualization complete: %d nodes revealed", revealed),
		map[string]interface{}{
			"revealed":   revealed,
			"failed":     failed,
			"elapsed_ms": elapsed.Milliseconds(),
		})
}

// Error reports a fatal search error with its user-facing message
func Error(gen uint64, searchID, userMessage string, meta map[string]string) Event {
	fields := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		fields[k] = v
	}
	return newEvent(KindError, gen, searchID, "Error: "+userMessage, fields)
}
