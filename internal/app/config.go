package app

import "net/http"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string       // config directory, e.g. $HOME/.vkrelay
	RelayURL   string       // relay API root, e.g. https://relay.example
	Passphrase string       // protects the credential vault at rest
	Env        string       // "dev" (console logs) or "prod" (JSON logs)
	LogLevel   string       // "debug", "info", "warn", "error"
	HTTP       *http.Client // optional; defaults to http.DefaultClient
}
