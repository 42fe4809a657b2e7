package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanmeadows/coabot/internal/bot"
	"github.com/alanmeadows/coabot/internal/history"
)

// HistoryLister reads recent run records. *history.Ledger implements it.
type HistoryLister interface {
	List(limit int) ([]history.Record, error)
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status string    `json:"status"`
	Uptime string    `json:"uptime"`
	Stats  bot.Stats `json:"stats"`
}

// API exposes the running loop over HTTP.
type API struct {
	bot     *bot.Bot
	records HistoryLister
	started time.Time
}

// NewAPI creates an API for b. records may be nil when history is disabled.
func NewAPI(b *bot.Bot, records HistoryLister) *API {
	return &API{bot: b, records: records, started: time.Now()}
}

// Handler returns the API routes.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", a.handleStatus)
	mux.HandleFunc("GET /history", a.handleHistory)
	mux.HandleFunc("POST /poll", a.handlePoll)
	return mux
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status: "running",
		Uptime: time.Since(a.started).Round(time.Second).String(),
		Stats:  a.bot.Stats(),
	})
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records := []history.Record{}
	if a.records != nil {
		list, err := a.records.List(limit)
		if err != nil {
			slog.Error("failed to list history", "error", err)
			http.Error(w, "failed to list history", http.StatusInternalServerError)
			return
		}
		if list != nil {
			records = list
		}
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handlePoll(w http.ResponseWriter, r *http.Request) {
	a.bot.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
