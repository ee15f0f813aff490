// Command relaydev runs an in-memory development relay. It issues pairing
// credentials, hands out tunnel sessions and auth codes, verifies signed
// requests against the same wire contract the client produces, and echoes
// tunneled traffic back. Nothing is persisted; restart to wipe state.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vkrelay/internal/app"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.dev")

	addr := flag.String("addr", envOr("RELAYDEV_ADDR", ":8080"), "listen address")
	env := flag.String("env", envOr("RELAYDEV_ENV", "dev"), "logging environment: dev or prod")
	level := flag.String("log-level", envOr("RELAYDEV_LOG_LEVEL", "debug"), "log level")
	flag.Parse()

	log := app.NewLogger(*env, *level)
	defer log.Sync()

	srv := newServer(log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Post("/relay/pair/{host}", srv.handlePair)
	r.Post("/relay/sessions", srv.handleCreateSession)
	r.Post("/relay/sessions/{session}/codes", srv.handleCreateCode)
	r.HandleFunc("/relay/tunnel/{host}/{code}/*", srv.handleTunnel)
	r.Handle("/metrics", promhttp.Handler())

	log.Info("relaydev listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// requestLogger logs one line per request at debug level.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()))
		})
	}
}
