package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Sessions   *SessionHandler
	WS         http.Handler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the admin API, the health probe, and the WebSocket
// upgrade behind the configured middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	if cfg.Sessions != nil {
		api := r.PathPrefix("/api").Subrouter()
		api.HandleFunc("/sessions", cfg.Sessions.List).Methods(http.MethodGet)
		api.HandleFunc("/sessions", cfg.Sessions.Create).Methods(http.MethodPost)
		api.HandleFunc("/sessions/{id}", cfg.Sessions.Get).Methods(http.MethodGet)
		api.HandleFunc("/sessions/{id}/end", cfg.Sessions.End).Methods(http.MethodPost)
		api.HandleFunc("/sessions/{id}/settings", cfg.Sessions.UpdateSettings).Methods(http.MethodPut)
		api.HandleFunc("/sessions/{id}/export", cfg.Sessions.Export).Methods(http.MethodGet)
		api.HandleFunc("/sessions/{id}/votes", cfg.Sessions.Votes).Methods(http.MethodGet)
		api.HandleFunc("/sessions/{id}/schedule", cfg.Sessions.Schedule).Methods(http.MethodPost)
		api.HandleFunc("/sessions/{id}/share", cfg.Sessions.Share).Methods(http.MethodPost)
		api.HandleFunc("/users/{id}/sessions", cfg.Sessions.UserSessions).Methods(http.MethodGet)
	}

	if cfg.WS != nil {
		r.Handle("/ws", cfg.WS)
	}

	var handler http.Handler = r
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
