package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/predictlive/sanrentan/internal/config"
)

// NewHTTPServer wires all routes. Participant and viewer endpoints are open;
// everything under /v1/organizer/ is gated by the shared organizer secret.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, h *Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Viewer and participant surface (polled by presentation clients).
	mux.HandleFunc("GET /v1/state", h.GetState)
	mux.HandleFunc("GET /v1/ranking", h.GetRanking)
	mux.HandleFunc("GET /v1/submissions", h.ListSubmissions)
	mux.HandleFunc("POST /v1/submissions", h.SubmitGuess)

	// Organizer surface.
	secret := cfg.Security.OrganizerSecret
	mux.HandleFunc("POST /v1/organizer/question", requireOrganizerSecret(secret, h.SetQuestion))
	mux.HandleFunc("POST /v1/organizer/options", requireOrganizerSecret(secret, h.SetOptions))
	mux.HandleFunc("POST /v1/organizer/open", requireOrganizerSecret(secret, h.OpenSubmissions))
	mux.HandleFunc("POST /v1/organizer/close", requireOrganizerSecret(secret, h.CloseSubmissions))
	mux.HandleFunc("POST /v1/organizer/publish", requireOrganizerSecret(secret, h.PublishAnswer))
	mux.HandleFunc("POST /v1/organizer/reset", requireOrganizerSecret(secret, h.ResetAll))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: withRequestID(logger, mux),
	}
}
