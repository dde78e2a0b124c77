package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DirectionFileSuffix is appended to the board name to form the token file.
const DirectionFileSuffix = "_extension_direction.txt"

// FileStore keeps one token file per board in a directory, normally the
// board's own destination folder.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a store rooted at baseDir. The directory is created
// lazily on the first Save.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// TokenPath returns the token file path for board.
func (s *FileStore) TokenPath(board string) string {
	return filepath.Join(s.baseDir, boardKey(board)+DirectionFileSuffix)
}

func (s *FileStore) Last(ctx context.Context, board string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.TokenPath(board))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read direction file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(ctx context.Context, board, direction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.TokenPath(board), []byte(direction), 0o644); err != nil {
		return fmt.Errorf("write direction file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context, board string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.TokenPath(board)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove direction file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory of the store.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ DirectionStore = (*FileStore)(nil)
