package routing_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"vkrelay/internal/domain"
	"vkrelay/internal/routing"
)

type memActive struct {
	host domain.HostID
	set  bool
}

func (m *memActive) SetActiveHost(h domain.HostID) error { m.host, m.set = h, true; return nil }
func (m *memActive) ActiveHost() (domain.HostID, bool, error) {
	return m.host, m.set, nil
}

func TestIsTunneledPath(t *testing.T) {
	cases := map[string]bool{
		"/workspaces":                     true,
		"/workspaces/":                    true,
		"/workspaces/42":                  true,
		"/issues/17/workspace":            true,
		"/issues/17/workspace/terminal":   true,
		"/projects/3/workspaces/create":   true,
		"/":                               false,
		"/issues/17":                      false,
		"/issues/17/comments":             false,
		"/projects/3/workspaces":          false,
		"/projects/3/workspaces/create/x": false,
		"/settings":                       false,
	}
	for path, want := range cases {
		require.Equal(t, want, routing.IsTunneledPath(path), "path %q", path)
	}
}

func TestIsRelayAPIPath(t *testing.T) {
	cases := map[string]bool{
		"/api/info":                 true,
		"/api/items?x=1":            true,
		"/api/relay":                false,
		"/api/relay/sessions":       false,
		"/api/relay/sessions?x=1":   false,
		"/api/relayed":              true, // prefix match is segment-exact
		"/apiary/info":              false,
		"/workspaces":               false,
		"/api/":                     true,
	}
	for path, want := range cases {
		require.Equal(t, want, routing.IsRelayAPIPath(path), "path %q", path)
	}
}

func TestResolveActiveHostIDPrefersExplicit(t *testing.T) {
	active := &memActive{}
	d := routing.New(active)

	host, ok := d.ResolveActiveHostID("/workspaces/42", url.Values{"host_id": {"h9"}})
	require.True(t, ok)
	require.Equal(t, domain.HostID("h9"), host)
	require.Equal(t, domain.HostID("h9"), active.host, "explicit host id is persisted")
}

func TestResolveActiveHostIDFallsBack(t *testing.T) {
	active := &memActive{host: "h1", set: true}
	d := routing.New(active)

	// Tunneled path without an explicit host id.
	host, ok := d.ResolveActiveHostID("/workspaces", url.Values{})
	require.True(t, ok)
	require.Equal(t, domain.HostID("h1"), host)

	// Non-tunneled path ignores the query entirely.
	host, ok = d.ResolveActiveHostID("/settings", url.Values{"host_id": {"h9"}})
	require.True(t, ok)
	require.Equal(t, domain.HostID("h1"), host)
}

func TestResolveActiveHostIDNoneKnown(t *testing.T) {
	d := routing.New(&memActive{})
	_, ok := d.ResolveActiveHostID("/settings", url.Values{})
	require.False(t, ok)
}
