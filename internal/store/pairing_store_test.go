package store_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"vkrelay/internal/domain"
	"vkrelay/internal/store"
)

func testCred(host string) domain.PairedHostCredential {
	return domain.PairedHostCredential{
		HostID:           domain.HostID(host),
		ClientID:         "client-1",
		PrivateKeyJWK:    json.RawMessage(`{"kty":"OKP","crv":"Ed25519","d":"nWGxne_9WmC6hEr0kuwsxERJxWl7MmkZcDusAxyuf2A"}`),
		ServerPublicKey:  "c2VydmVyLWtleQ==",
		SigningSessionID: "s1",
	}
}

func TestPairingStoreRoundTrip(t *testing.T) {
	s := store.NewPairingFileStore(t.TempDir(), "hunter2")

	require.NoError(t, s.Save(testCred("h1")))
	require.NoError(t, s.Save(testCred("h2")))

	got, ok, err := s.Get("h1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.SigningSessionID("s1"), got.SigningSessionID)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, ok, err = s.Get("h3")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPairingStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	s := store.NewPairingFileStore(dir, "hunter2")
	require.NoError(t, s.Save(testCred("h1")))

	other := store.NewPairingFileStore(dir, "nope")
	_, _, err := other.Get("h1")
	require.Error(t, err)
}

func TestPairingStoreNotifiesSubscribers(t *testing.T) {
	s := store.NewPairingFileStore(t.TempDir(), "hunter2")

	var changed []domain.HostID
	cancel := s.Subscribe(func(h domain.HostID) { changed = append(changed, h) })

	require.NoError(t, s.Save(testCred("h1")))
	require.Equal(t, []domain.HostID{"h1"}, changed)

	cancel()
	require.NoError(t, s.Save(testCred("h2")))
	require.Equal(t, []domain.HostID{"h1"}, changed, "cancelled subscriber must not fire")
}

func TestActiveHostStore(t *testing.T) {
	s := store.NewActiveHostFileStore(t.TempDir())

	_, ok, err := s.ActiveHost()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SetActiveHost("h7"))
	host, ok, err := s.ActiveHost()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.HostID("h7"), host)
}
