package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vkrelay/internal/domain"
)

const pairingFile = "pairings.enc" // map[host_id]PairedHostCredential

// PairingFileStore persists paired-host credentials on disk, encrypted at
// rest with a passphrase-derived key, and publishes change notifications to
// subscribers. It is the only writer of credential state; the core reads
// via List/Get and writes back only from the signing-session refresh path.
type PairingFileStore struct {
	dir        string
	passphrase string

	mu   sync.Mutex
	subs map[int]func(domain.HostID)
	next int
}

// NewPairingFileStore opens (or lazily creates) the vault under dir.
func NewPairingFileStore(dir, passphrase string) *PairingFileStore {
	return &PairingFileStore{
		dir:        dir,
		passphrase: passphrase,
		subs:       make(map[int]func(domain.HostID)),
	}
}

// List returns every stored credential.
func (s *PairingFileStore) List() ([]domain.PairedHostCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.PairedHostCredential, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out, nil
}

// Get returns the credential for one host, if present.
func (s *PairingFileStore) Get(host domain.HostID) (domain.PairedHostCredential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return domain.PairedHostCredential{}, false, err
	}
	c, ok := m[host.String()]
	return c, ok, nil
}

// Save writes a credential and notifies subscribers for its host id. The
// notification runs synchronously so key and session caches are evicted
// before any caller can observe the new credential.
func (s *PairingFileStore) Save(cred domain.PairedHostCredential) error {
	if cred.HostID == "" {
		return fmt.Errorf("credential has no host id")
	}

	s.mu.Lock()
	m, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	m[cred.HostID.String()] = cred
	if err := s.save(m); err != nil {
		s.mu.Unlock()
		return err
	}
	subs := make([]func(domain.HostID), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cred.HostID)
	}
	return nil
}

// Subscribe registers a change callback and returns its cancel function.
func (s *PairingFileStore) Subscribe(onChange func(domain.HostID)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = onChange
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// load reads and decrypts the vault. A missing vault is an empty map.
func (s *PairingFileStore) load() (map[string]domain.PairedHostCredential, error) {
	m := make(map[string]domain.PairedHostCredential)
	b, err := readFile(filepath.Join(s.dir, pairingFile))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return m, nil
	}
	raw, err := decrypt(s.passphrase, b)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// save encrypts and atomically replaces the vault file.
func (s *PairingFileStore) save(m map[string]domain.PairedHostCredential) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	sealed, err := encrypt(s.passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, pairingFile), sealed, 0o600)
}

// Compile-time assertion that PairingFileStore implements domain.PairingStore.
var _ domain.PairingStore = (*PairingFileStore)(nil)
