package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/kazuph/slack-bridge/internal/bridge"
	"github.com/kazuph/slack-bridge/internal/history"
	"github.com/kazuph/slack-bridge/internal/slack"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	svc *bridge.Service,
	store *history.Store,
	verifier *slack.Verifier,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	askH := NewAskHandler(svc)
	healthH := NewHealthHandler(svc, store)
	historyH := NewHistoryHandler(store)
	interactionH := NewInteractionHandler(svc, logger)

	r.Get("/health", healthH.Health)
	r.Get("/history", historyH.List)
	r.Post("/ask-and-wait", askH.AskAndWait)
	r.Post("/ask", askH.Ask)

	// Slack callbacks are the only authenticated surface; everything else
	// binds to localhost.
	r.Group(func(r chi.Router) {
		r.Use(SlackSignature(verifier, logger))
		r.Post("/slack/interactions", interactionH.Interactions)
	})

	return r
}
