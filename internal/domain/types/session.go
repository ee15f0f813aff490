package types

// HostContext pairs a credential with the resolved tunnel entry point for
// that host. It is what callers need before signing and sending a request.
type HostContext struct {
	Credential PairedHostCredential
	BaseURL    string
}
