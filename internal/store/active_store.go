package store

import (
	"os"
	"path/filepath"
	"sync"

	"vkrelay/internal/domain"
)

const activeFile = "active_host.json" // { "host_id": "..." }

type activeHostRecord struct {
	HostID string `json:"host_id"`
}

// ActiveHostFileStore remembers the last host a page resolved to. Plain
// JSON; the record carries no secrets.
type ActiveHostFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewActiveHostFileStore stores the active-host record under dir.
func NewActiveHostFileStore(dir string) *ActiveHostFileStore {
	return &ActiveHostFileStore{dir: dir}
}

// SetActiveHost persists host as the current active host.
func (s *ActiveHostFileStore) SetActiveHost(host domain.HostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	rec := activeHostRecord{HostID: host.String()}
	return writeJSON(filepath.Join(s.dir, activeFile), rec, 0o600)
}

// ActiveHost returns the persisted active host, if any.
func (s *ActiveHostFileStore) ActiveHost() (domain.HostID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec activeHostRecord
	if err := readJSON(filepath.Join(s.dir, activeFile), &rec); err != nil {
		return "", false, err
	}
	if rec.HostID == "" {
		return "", false, nil
	}
	return domain.HostID(rec.HostID), true, nil
}

// Compile-time assertion that ActiveHostFileStore implements domain.ActiveHostStore.
var _ domain.ActiveHostStore = (*ActiveHostFileStore)(nil)
