package app

import (
	"net/http"

	"go.uber.org/zap"

	"vkrelay/internal/domain"
	"vkrelay/internal/keystore"
	"vkrelay/internal/relay"
	"vkrelay/internal/routing"
	"vkrelay/internal/session"
	"vkrelay/internal/signer"
	"vkrelay/internal/store"
	"vkrelay/internal/tunnel"
)

// Wire bundles all stores, protocol components, and clients for the CLI.
type Wire struct {
	Log      *zap.Logger
	Pairing  domain.PairingStore
	Active   domain.ActiveHostStore
	Keys     domain.KeyStore
	Relay    domain.RelaySessionClient
	Resolver domain.SessionResolver
	Signer   *signer.Signer
	Routing  *routing.Decider
	Tunnel   *tunnel.Client
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg. KeyStore and the
// session resolver subscribe to pairing changes here, at construction time,
// so every cache eviction path is wired before first use.
func NewWire(cfg Config) (*Wire, error) {
	log := NewLogger(cfg.Env, cfg.LogLevel)

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	pairing := store.NewPairingFileStore(cfg.Home, cfg.Passphrase)
	active := store.NewActiveHostFileStore(cfg.Home)

	keys := keystore.New(pairing, log)
	rc := relay.NewHTTP(cfg.RelayURL, httpClient)
	resolver := session.New(pairing, rc, keys, log)
	sgn := signer.New(keys)

	return &Wire{
		Log:      log,
		Pairing:  pairing,
		Active:   active,
		Keys:     keys,
		Relay:    rc,
		Resolver: resolver,
		Signer:   sgn,
		Routing:  routing.New(active),
		Tunnel:   tunnel.New(resolver, sgn, keys, httpClient, log),
		HTTP:     httpClient,
	}, nil
}
