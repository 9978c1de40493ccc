package ledger

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/auth"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/httpjson"
)

type HTTPHandler struct {
	auth   auth.Service
	ledger Service
}

func NewHTTPHandler(authService auth.Service, ledgerService Service) *HTTPHandler {
	return &HTTPHandler{auth: authService, ledger: ledgerService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/runs/recent", h.handleRecent)
	mux.HandleFunc("GET /api/runs/{runID}", h.handleRun)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.resolveAccount(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, accountID, httpjson.Limit(r.URL.Query().Get("limit"), 20, 100))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "query recent runs failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.resolveAccount(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	detail, err := h.ledger.GetRun(ctx, accountID, r.PathValue("runID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "run not found")
			return
		}
		httpjson.Error(w, http.StatusInternalServerError, "query run failed")
		return
	}
	httpjson.Write(w, http.StatusOK, detail)
}

func (h *HTTPHandler) resolveAccount(r *http.Request) (uint64, bool) {
	token := httpjson.BearerToken(r)
	if token == "" {
		return 0, false
	}
	id, _, ok := h.auth.ResolveSession(token)
	return id, ok
}
