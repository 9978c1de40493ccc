package lobby

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/auth"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/httpjson"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/ledger"
	"github.com/urbanhobbit/CIOGame04/crisis"
)

type summaryResponse struct {
	RunID   string         `json:"run_id"`
	Mode    string         `json:"mode"`
	Cached  bool           `json:"cached"`
	Summary crisis.Summary `json:"summary"`
}

type HTTPHandler struct {
	auth   auth.Service
	lobby  *Lobby
	ledger ledger.Service
}

func NewHTTPHandler(authService auth.Service, l *Lobby) *HTTPHandler {
	return &HTTPHandler{auth: authService, lobby: l, ledger: l.cfg.Ledger}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/runs/{runID}/summary", h.handleSummary)
	mux.HandleFunc("GET /api/lobby/stats", h.handleStats)
}

// handleSummary answers from the summary cache and falls back to the ledger.
func (h *HTTPHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	token := httpjson.BearerToken(r)
	accountID, _, ok := h.auth.ResolveSession(token)
	if token == "" || !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	runID := r.PathValue("runID")

	if info, ok := h.lobby.RecentSummary(runID); ok && info.AccountID == accountID {
		httpjson.Write(w, http.StatusOK, summaryResponse{
			RunID:   info.RunID,
			Mode:    string(info.Mode),
			Cached:  true,
			Summary: info.Summary,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	detail, err := h.ledger.GetRun(ctx, accountID, runID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "run not found")
			return
		}
		httpjson.Error(w, http.StatusInternalServerError, "query run failed")
		return
	}
	httpjson.Write(w, http.StatusOK, summaryResponse{
		RunID:   detail.Run.RunID,
		Mode:    detail.Run.Mode,
		Summary: detail.Run.Summary,
	})
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]int{
		"rooms":            h.lobby.RoomCount(),
		"cached_summaries": h.lobby.summaries.Len(),
	})
}
