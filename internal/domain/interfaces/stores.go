package interfaces

import domaintypes "vkrelay/internal/domain/types"

// PairingStore persists paired-host credentials and publishes change
// notifications. The core reads credentials and writes back only from the
// signing-session refresh path.
type PairingStore interface {
	List() ([]domaintypes.PairedHostCredential, error)
	Get(host domaintypes.HostID) (domaintypes.PairedHostCredential, bool, error)
	Save(credential domaintypes.PairedHostCredential) error

	// Subscribe registers a callback invoked synchronously whenever the
	// credential for a host changes. The returned function cancels the
	// subscription.
	Subscribe(onChange func(domaintypes.HostID)) (cancel func())
}

// ActiveHostStore remembers which paired host the current page belongs to.
type ActiveHostStore interface {
	SetActiveHost(host domaintypes.HostID) error
	ActiveHost() (domaintypes.HostID, bool, error)
}
