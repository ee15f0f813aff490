package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vkrelay/internal/domain"
	"vkrelay/internal/keystore"
	"vkrelay/internal/session"
)

const testJWK = `{"kty":"OKP","crv":"Ed25519",` +
	`"d":"nWGxne_9WmC6hEr0kuwsxERJxWl7MmkZcDusAxyuf2A",` +
	`"x":"11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}`

// memPairing is an in-memory PairingStore with synchronous notifications.
type memPairing struct {
	mu    sync.Mutex
	creds map[domain.HostID]domain.PairedHostCredential
	subs  []func(domain.HostID)
}

func newMemPairing(creds ...domain.PairedHostCredential) *memPairing {
	m := &memPairing{creds: make(map[domain.HostID]domain.PairedHostCredential)}
	for _, c := range creds {
		m.creds[c.HostID] = c
	}
	return m
}

func (m *memPairing) List() ([]domain.PairedHostCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PairedHostCredential, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	return out, nil
}

func (m *memPairing) Get(h domain.HostID) (domain.PairedHostCredential, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[h]
	return c, ok, nil
}

func (m *memPairing) Save(c domain.PairedHostCredential) error {
	m.mu.Lock()
	m.creds[c.HostID] = c
	subs := append([]func(domain.HostID){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(c.HostID)
	}
	return nil
}

func (m *memPairing) Subscribe(fn func(domain.HostID)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

// fakeRelay counts calls and can be told to fail or stall.
type fakeRelay struct {
	sessions  atomic.Int64
	codes     atomic.Int64
	refreshes atomic.Int64

	stall       time.Duration
	failSession atomic.Bool
	refreshID   domain.SigningSessionID
	refreshErr  error
}

func (f *fakeRelay) CreateSession(ctx context.Context, h domain.HostID) (domain.RelaySessionID, error) {
	n := f.sessions.Add(1)
	if f.stall > 0 {
		time.Sleep(f.stall)
	}
	if f.failSession.Load() {
		return "", errors.New("relay down")
	}
	return domain.RelaySessionID(fmt.Sprintf("rs-%s-%d", h, n)), nil
}

func (f *fakeRelay) CreateAuthCode(ctx context.Context, s domain.RelaySessionID) (domain.AuthCode, error) {
	f.codes.Add(1)
	return domain.AuthCode("code-for-" + s.String()), nil
}

func (f *fakeRelay) TunnelBaseURL(h domain.HostID, c domain.AuthCode) string {
	return "https://relay.example/relay/tunnel/" + h.String() + "/" + c.String()
}

func (f *fakeRelay) RefreshSigningSession(ctx context.Context, baseURL string, req domain.RefreshRequest) (domain.SigningSessionID, error) {
	f.refreshes.Add(1)
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.refreshID, nil
}

func testCred(host string) domain.PairedHostCredential {
	return domain.PairedHostCredential{
		HostID:           domain.HostID(host),
		ClientID:         "client-1",
		PrivateKeyJWK:    json.RawMessage(testJWK),
		SigningSessionID: "s1",
	}
}

func newResolver(pairing *memPairing, relay *fakeRelay) *session.Resolver {
	keys := keystore.New(pairing, zap.NewNop())
	return session.New(pairing, relay, keys, zap.NewNop())
}

func TestResolveHostContext(t *testing.T) {
	pairing := newMemPairing(testCred("h1"))
	relay := &fakeRelay{}
	r := newResolver(pairing, relay)

	hc, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)
	require.Equal(t, domain.SigningSessionID("s1"), hc.Credential.SigningSessionID)
	require.Equal(t, "https://relay.example/relay/tunnel/h1/code-for-rs-h1-1", hc.BaseURL)

	// Second resolve is served from cache.
	hc2, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)
	require.Equal(t, hc.BaseURL, hc2.BaseURL)
	require.EqualValues(t, 1, relay.sessions.Load())
}

func TestResolveHostContextErrors(t *testing.T) {
	cred := testCred("h2")
	cred.SigningSessionID = ""
	r := newResolver(newMemPairing(cred), &fakeRelay{})

	_, err := r.ResolveHostContext(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrHostNotPaired)

	_, err = r.ResolveHostContext(context.Background(), "h2")
	require.ErrorIs(t, err, domain.ErrPairingOutdated)
}

func TestResolveCoalescesConcurrentCallers(t *testing.T) {
	pairing := newMemPairing(testCred("h1"))
	relay := &fakeRelay{stall: 50 * time.Millisecond}
	r := newResolver(pairing, relay)

	const n = 16
	urls := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hc, err := r.ResolveHostContext(context.Background(), "h1")
			urls[i], errs[i] = hc.BaseURL, err
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	require.EqualValues(t, 1, relay.sessions.Load(), "one underlying creation sequence")
	require.EqualValues(t, 1, relay.codes.Load())
	for i := 1; i < n; i++ {
		require.Equal(t, urls[0], urls[i], "all callers observe the same base URL")
	}
}

func TestResolutionFailureRetriesCleanly(t *testing.T) {
	pairing := newMemPairing(testCred("h1"))
	relay := &fakeRelay{}
	relay.failSession.Store(true)
	r := newResolver(pairing, relay)

	_, err := r.ResolveHostContext(context.Background(), "h1")
	require.ErrorIs(t, err, domain.ErrSessionCreation)

	// Nothing was cached; the next attempt starts from scratch and succeeds.
	relay.failSession.Store(false)
	hc, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)
	require.NotEmpty(t, hc.BaseURL)
	require.EqualValues(t, 2, relay.sessions.Load())
}

func TestPairingChangeEvictsBaseURL(t *testing.T) {
	pairing := newMemPairing(testCred("h1"), testCred("h8"))
	relay := &fakeRelay{}
	r := newResolver(pairing, relay)

	first, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)
	other, err := r.ResolveHostContext(context.Background(), "h8")
	require.NoError(t, err)

	require.NoError(t, pairing.Save(testCred("h1")))

	second, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)
	require.NotEqual(t, first.BaseURL, second.BaseURL, "h1 entry re-created")

	otherAgain, err := r.ResolveHostContext(context.Background(), "h8")
	require.NoError(t, err)
	require.Equal(t, other.BaseURL, otherAgain.BaseURL, "h8 entry untouched")
}

func TestRefreshWithoutClientID(t *testing.T) {
	pairing := newMemPairing()
	relay := &fakeRelay{refreshID: "s2"}
	r := newResolver(pairing, relay)

	cred := testCred("h1")
	cred.ClientID = ""
	got := r.RefreshSigningSession(context.Background(), domain.HostContext{Credential: cred, BaseURL: "https://x"})
	require.Nil(t, got)
	require.EqualValues(t, 0, relay.refreshes.Load(), "no network I/O without a client id")
}

func TestRefreshSuccessPersistsNewSession(t *testing.T) {
	pairing := newMemPairing(testCred("h1"))
	relay := &fakeRelay{refreshID: "s2"}
	r := newResolver(pairing, relay)

	hc, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)

	next := r.RefreshSigningSession(context.Background(), hc)
	require.NotNil(t, next)
	require.Equal(t, domain.SigningSessionID("s2"), next.Credential.SigningSessionID)
	require.Equal(t, hc.BaseURL, next.BaseURL)

	stored, ok, err := pairing.Get("h1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.SigningSessionID("s2"), stored.SigningSessionID, "subsequent signs use the new value")
}

func TestRefreshFailureReturnsNil(t *testing.T) {
	pairing := newMemPairing(testCred("h1"))
	relay := &fakeRelay{refreshErr: errors.New("relay says no")}
	r := newResolver(pairing, relay)

	hc, err := r.ResolveHostContext(context.Background(), "h1")
	require.NoError(t, err)

	require.Nil(t, r.RefreshSigningSession(context.Background(), hc))

	stored, _, _ := pairing.Get("h1")
	require.Equal(t, domain.SigningSessionID("s1"), stored.SigningSessionID, "credential untouched on failure")
}

func TestRefreshMessageFormat(t *testing.T) {
	require.Equal(t, "v1|refresh|1000|abc|client-1", session.RefreshMessage(1000, "abc", "client-1"))
}
