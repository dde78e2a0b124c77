// Package state stores the small amount of state a board keeps between
// extension calls: the direction the grid last grew in.
//
// Alternating extensions read the last direction before growing the grid
// and save the chosen one after the descriptor has been rewritten. A batch
// import clears the token when it finishes, so the next batch starts fresh.
//
// Three backends implement [DirectionStore]:
//   - [FileStore]: one small text file per board, next to the board file
//   - [RedisStore]: shared state for API servers running several instances
//   - [MemoryStore]: in-process, for tests and single-process servers
//
// # Usage
//
//	store := state.NewFileStore(dir)
//	last, err := store.Last(ctx, "holiday")
//	if err != nil {
//	    return err
//	}
//	// ... extend ...
//	store.Save(ctx, "holiday", "Bottom")
package state

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// DirectionStore persists the last extension direction per board.
type DirectionStore interface {
	// Last returns the saved direction, or "" when none is stored.
	Last(ctx context.Context, board string) (string, error)
	// Save records direction as the board's last extension direction.
	Save(ctx context.Context, board, direction string) error
	// Clear forgets the saved direction. Clearing a missing token is not
	// an error.
	Clear(ctx context.Context, board string) error
	Close() error
}

// boardKey reduces a board name to a single path element.
func boardKey(board string) string {
	return filepath.Base(strings.TrimSpace(board))
}

// =============================================================================
// Memory store
// =============================================================================

// MemoryStore keeps directions in process memory. It is safe for
// concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	dirs map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dirs: make(map[string]string)}
}

func (s *MemoryStore) Last(ctx context.Context, board string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirs[boardKey(board)], nil
}

func (s *MemoryStore) Save(ctx context.Context, board, direction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[boardKey(board)] = direction
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, board string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirs, boardKey(board))
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ DirectionStore = (*MemoryStore)(nil)
