// Package reveal exposes a search result's nodes over time.
//
// A Store holds the authoritative reveal state (ordered revealed IDs, the
// node map, and the generation counter). A Scheduler walks an ordered node
// list, resolves each node's asset, and commits nodes to the Store one
// micro-batch at a time. Every commit is tagged with the generation the
// scheduler was started for; once the Store has moved on to a newer
// generation, stale commits are refused and the scheduler stops.
package reveal

import (
	"sync"

	"github.com/teranos/recipeviz/graph"
)

// Snapshot is an immutable view of the reveal state at one point in time
type Snapshot struct {
	Generation  uint64
	Version     uint64       // Increments on every reset and commit
	RevealedIDs []int        // In reveal order
	Nodes       []graph.Node // Parallel to RevealedIDs
}

// Len returns the number of revealed nodes
func (s Snapshot) Len() int { return len(s.RevealedIDs) }

// IDSet returns the revealed IDs as a membership set
func (s Snapshot) IDSet() map[int]struct{} {
	set := make(map[int]struct{}, len(s.RevealedIDs))
	for _, id := range s.RevealedIDs {
		set[id] = struct{}{}
	}
	return set
}

// Store is the reveal state for one canvas session.
//
// Within a generation the revealed list and node map are append-only, so
// snapshots share backing arrays safely. Reset replaces them wholesale.
type Store struct {
	mu         sync.RWMutex
	generation uint64
	version    uint64
	revealed   []int
	nodes      []graph.Node
	nodeMap    map[int]*graph.Node

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// NewStore creates an empty store at generation 0
func NewStore() *Store {
	return &Store{
		nodeMap: make(map[int]*graph.Node),
		subs:    make(map[int]chan struct{}),
	}
}

// Reset clears the reveal state and starts a new generation.
// The returned generation must be passed to Scheduler.Run.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	s.generation++
	s.version++
	s.revealed = nil
	s.nodes = nil
	s.nodeMap = make(map[int]*graph.Node)
	gen := s.generation
	s.mu.Unlock()

	s.notify()
	return gen
}

// Invalidate bumps the generation without clearing revealed nodes, stopping
// any in-flight scheduler while leaving the partial graph on screen.
func (s *Store) Invalidate() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	return gen
}

// Generation returns the current generation
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Commit appends batch to the revealed set if gen is still current.
// Returns false (and changes nothing) for stale generations.
func (s *Store) Commit(gen uint64, batch []graph.Node) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	if len(batch) == 0 {
		s.mu.Unlock()
		return true
	}
	for _, n := range batch {
		s.revealed = append(s.revealed, n.ID)
		s.nodes = append(s.nodes, n)
		s.nodeMap[n.ID] = &s.nodes[len(s.nodes)-1]
	}
	s.version++
	s.mu.Unlock()

	s.notify()
	return true
}

// Snapshot returns the current reveal state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.revealed)
	return Snapshot{
		Generation: s.generation,
		Version:    s.version,
		// Full slice expressions cap the views so later appends never alias them
		RevealedIDs: s.revealed[:n:n],
		Nodes:       s.nodes[:n:n],
	}
}

// Node looks up a revealed node by ID
func (s *Store) Node(id int) (graph.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodeMap[id]
	if !ok {
		return graph.Node{}, false
	}
	return *n, true
}

// Subscribe returns a channel that receives a signal after state changes.
// Signals coalesce: a slow subscriber sees one pending signal, never a
// backlog, and commits never block on subscribers.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
			// Already signalled
		}
	}
}
