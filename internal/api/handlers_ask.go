package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kazuph/slack-bridge/internal/bridge"
	"github.com/kazuph/slack-bridge/internal/models"
)

type AskHandler struct {
	svc *bridge.Service
}

func NewAskHandler(svc *bridge.Service) *AskHandler {
	return &AskHandler{svc: svc}
}

// AskAndWait handles POST /ask-and-wait. The request blocks until a human
// answers in Slack or the ask timeout elapses; a timeout is reported in
// the answer body, not as an HTTP error.
func (h *AskHandler) AskAndWait(w http.ResponseWriter, r *http.Request) {
	var req models.AskAndWaitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "questions must not be empty")
		return
	}

	answer, _, err := h.svc.AskAndWait(r.Context(), req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; nobody is reading this response.
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// Ask handles POST /ask, the fire-and-forget pane-delivery variant.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "questions must not be empty")
		return
	}

	questionID, err := h.svc.Ask(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.AskResponse{Success: true, QuestionID: questionID})
}
