package httpapi

import (
	"log/slog"
	"net/http"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Views
	vh := ViewsHandler{Sessions: d.Sessions, LinkOrigin: d.Cfg.Render.LinkOrigin}
	mux.HandleFunc("/{$}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: vh.Index,
	}))
	mux.HandleFunc("/views/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    vh.Page,
		http.MethodDelete: vh.Close,
	}))
	mux.HandleFunc("/views/{id}/grid", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: vh.Grid,
	}))
	mux.HandleFunc("/views/{id}/state", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: vh.State,
	}))
	mux.HandleFunc("/views/{id}/role", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: vh.SelectRole,
	}))
	mux.HandleFunc("/views/{id}/theme", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: vh.ToggleTheme,
	}))
	mux.HandleFunc("/roles", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: vh.Roles,
	}))

	// SSE events
	eh := EventsHandler{Sessions: d.Sessions, PingInterval: d.PingInterval}
	mux.HandleFunc("/views/{id}/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Diagnostics
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/fetches", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Fetches,
	}))
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	// Config (read-only)
	ch := ConfigHandler{Cfg: d.Cfg, Validation: d.Validation}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	hh := HealthHandler{Live: d.Sessions.Len}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}

// Handler wraps the mux in the standard middleware chain. A nil log uses
// slog.Default.
func Handler(mux http.Handler, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return Chain(mux, RequestID, AccessLog(log), Recover(log), Cors)
}
