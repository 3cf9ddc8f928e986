package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/kazuph/slack-bridge/internal/bridge"
	"github.com/kazuph/slack-bridge/internal/slack"
)

const expiredText = "⚠️ This question has expired or was already answered"

type InteractionHandler struct {
	svc    *bridge.Service
	logger *slog.Logger
}

func NewInteractionHandler(svc *bridge.Service, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{svc: svc, logger: logger}
}

// Interactions handles POST /slack/interactions: button clicks and modal
// submissions. The signature middleware has already authenticated the
// request by the time this runs.
func (h *InteractionHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	inter, err := slack.ParseInteraction(body)
	if err != nil {
		h.logger.Warn("unparseable interaction callback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch inter.Kind {
	case slack.InteractionOptionClick:
		text, ok := h.svc.ResolveButton(r.Context(), inter.Value)
		if !ok {
			text = expiredText
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"replace_original": true,
			"text":             text,
		})

	case slack.InteractionFreeTextClick:
		err := h.svc.OpenFreeTextModal(r.Context(), inter.TriggerID, inter.Value)
		if errors.Is(err, bridge.ErrNotPending) {
			writeJSON(w, http.StatusOK, map[string]string{"text": expiredText})
			return
		}
		if err != nil {
			h.logger.Warn("free-text modal open failed",
				"questionId", inter.Value.QuestionID,
				"error", err,
			)
		}
		// A modal-open failure is still acked with an empty 200; the
		// modal (or its absence) is the user-visible outcome.
		w.WriteHeader(http.StatusOK)

	case slack.InteractionModalSubmit:
		if h.svc.ResolveModal(r.Context(), inter.Metadata, inter.FreeText) {
			writeJSON(w, http.StatusOK, map[string]string{"response_action": "clear"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"response_action": "errors",
			"errors": map[string]string{
				"freetext_input": expiredText,
			},
		})

	default:
		writeError(w, http.StatusBadRequest, "unsupported interaction")
	}
}
