package routing

import (
	"net/url"
	"strings"

	"vkrelay/internal/domain"
)

const (
	// apiPrefix is the generic API prefix whose calls are signed and
	// tunneled when a page belongs to a paired host.
	apiPrefix = "/api/"

	// relayAPIPrefix is reserved for relay-management calls, which must
	// never themselves be tunneled through the relay.
	relayAPIPrefix = "/api/relay"

	// HostQueryParam carries an explicit host id in a page URL.
	HostQueryParam = "host_id"
)

// Decider decides which paths are tunneled and which paired host the
// current page belongs to.
type Decider struct {
	active domain.ActiveHostStore
}

// New constructs a Decider persisting the active host through the store.
func New(active domain.ActiveHostStore) *Decider {
	return &Decider{active: active}
}

// IsTunneledPath reports whether pathname is one of the page shapes served
// through the relay: workspace roots, issue workspaces, and project
// workspace creation.
func IsTunneledPath(pathname string) bool {
	segs := splitPath(pathname)
	switch {
	case len(segs) >= 1 && segs[0] == "workspaces":
		return true
	case len(segs) >= 3 && segs[0] == "issues" && segs[2] == "workspace":
		return true
	case len(segs) == 4 && segs[0] == "projects" && segs[2] == "workspaces" && segs[3] == "create":
		return true
	}
	return false
}

// IsRelayAPIPath reports whether pathAndQuery is an API call that goes
// through the signed tunnel. Relay-management calls under /api/relay are
// excluded so they are never recursively tunneled.
func IsRelayAPIPath(pathAndQuery string) bool {
	path := pathAndQuery
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, apiPrefix) {
		return false
	}
	return path != relayAPIPrefix && !strings.HasPrefix(path, relayAPIPrefix+"/")
}

// ResolveActiveHostID returns the host the current page belongs to. An
// explicit host id in the query wins and is persisted as the new active
// host; otherwise the last persisted active host is used.
func (d *Decider) ResolveActiveHostID(pathname string, query url.Values) (domain.HostID, bool) {
	if IsTunneledPath(pathname) {
		if v := query.Get(HostQueryParam); v != "" {
			host := domain.HostID(v)
			// Best effort; an unsaved active host only loses the fallback.
			_ = d.active.SetActiveHost(host)
			return host, true
		}
	}
	host, ok, err := d.active.ActiveHost()
	if err != nil || !ok {
		return "", false
	}
	return host, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
