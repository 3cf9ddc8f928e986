package api

import (
	"net/http"
	"strconv"

	"github.com/kazuph/slack-bridge/internal/bridge"
	"github.com/kazuph/slack-bridge/internal/history"
	"github.com/kazuph/slack-bridge/internal/models"
)

type HealthHandler struct {
	svc     *bridge.Service
	history *history.Store
}

func NewHealthHandler(svc *bridge.Service, store *history.Store) *HealthHandler {
	return &HealthHandler{svc: svc, history: store}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Pending: h.svc.Pending(),
	}

	if h.history == nil {
		resp.DB = models.ServiceCheck{Status: "disabled"}
	} else if _, err := h.history.Count(); err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type HistoryHandler struct {
	history *history.Store
}

func NewHistoryHandler(store *history.Store) *HistoryHandler {
	return &HistoryHandler{history: store}
}

// List handles GET /history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.history.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.AnswerRecord{}
	}

	writeJSON(w, http.StatusOK, models.HistoryResponse{Answers: records})
}
