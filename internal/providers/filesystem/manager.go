package filesystem

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/clipboard"
)

// DefaultSearchLimit caps the number of search results.
const DefaultSearchLimit = 500

// Options configures a Manager.
type Options struct {
	Root        string
	SearchLimit int
	Logger      *zap.Logger
}

// Manager is the file manager facade. Every exported operation validates
// its path arguments through the Guard before touching the filesystem.
type Manager struct {
	guard       *Guard
	clipboard   *clipboard.Store
	searchLimit int
	logger      *zap.Logger

	// commitMu serialises "pick a free name, rename into place" so that
	// concurrent pastes, uploads and duplicates never choose the same name.
	commitMu sync.Mutex
}

// NewManager creates a manager confined to opts.Root.
func NewManager(opts Options, store *clipboard.Store) (*Manager, error) {
	guard, err := NewGuard(opts.Root)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: clipboard store required", ErrInvalidArgument)
	}

	limit := opts.SearchLimit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		guard:       guard,
		clipboard:   store,
		searchLimit: limit,
		logger:      logger.Named("files"),
	}, nil
}

// Root returns the canonical root directory.
func (m *Manager) Root() string {
	return m.guard.Root()
}

// Guard exposes the path guard used by the manager.
func (m *Manager) Guard() *Guard {
	return m.guard
}
