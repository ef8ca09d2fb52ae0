package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/reel/internal/session"
)

// MemoryIndex keeps live sessions in memory.
// Redis holds the durable copy; this is the hot path for every request.
type MemoryIndex struct {
	mu        sync.RWMutex
	sessions  map[string]*session.Session // ID -> Session
	lastEvict time.Time                   // Timestamp of last idle sweep
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		sessions: make(map[string]*session.Session),
	}
}

// Get retrieves a session by ID
func (idx *MemoryIndex) Get(id string) (*session.Session, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s, ok := idx.sessions[id]
	return s, ok
}

// Add adds or replaces a single session
func (idx *MemoryIndex) Add(s *session.Session) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.sessions[s.ID] = s
}

// Delete removes a session from the index
func (idx *MemoryIndex) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.sessions, id)
}

// All returns every live session
func (idx *MemoryIndex) All() []*session.Session {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(idx.sessions))
	for _, s := range idx.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Count returns the number of sessions in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.sessions)
}

// SignedIn returns the number of sessions with a user attached
func (idx *MemoryIndex) SignedIn() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, s := range idx.sessions {
		if s.UserID() != "" {
			n++
		}
	}
	return n
}

// EvictIdle removes sessions not seen since cutoff and returns their IDs
func (idx *MemoryIndex) EvictIdle(cutoff time.Time) []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var evicted []string
	for id, s := range idx.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(idx.sessions, id)
			evicted = append(evicted, id)
		}
	}
	idx.lastEvict = time.Now()
	return evicted
}

// GetLastEvict returns the timestamp of the last idle sweep
func (idx *MemoryIndex) GetLastEvict() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastEvict
}
