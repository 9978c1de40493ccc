package auth

import (
	"errors"
	"net/http"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/httpjson"
)

type HTTPHandler struct {
	service Service
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccountID    uint64 `json:"account_id"`
	SessionToken string `json:"session_token"`
	Reused       bool   `json:"reused,omitempty"`
}

type meResponse struct {
	AccountID uint64 `json:"account_id"`
	Username  string `json:"username"`
}

func NewHTTPHandler(service Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/guest", h.handleGuest)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/me", h.handleMe)
}

func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, token, err := h.service.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrInvalidPassword):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUsernameTaken):
			httpjson.Error(w, http.StatusConflict, err.Error())
		default:
			httpjson.Error(w, http.StatusInternalServerError, "register failed")
		}
		return
	}
	httpjson.Write(w, http.StatusOK, sessionResponse{AccountID: id, SessionToken: token})
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpjson.Error(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	httpjson.Write(w, http.StatusOK, sessionResponse{AccountID: id, SessionToken: token})
}

func (h *HTTPHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	id, token, reused, err := h.service.Guest(httpjson.BearerToken(r))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "guest session failed")
		return
	}
	httpjson.Write(w, http.StatusOK, sessionResponse{AccountID: id, SessionToken: token, Reused: reused})
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := httpjson.BearerToken(r)
	if token == "" {
		httpjson.Error(w, http.StatusUnauthorized, "missing session token")
		return
	}
	h.service.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, username, ok := h.service.ResolveSession(httpjson.BearerToken(r))
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	httpjson.Write(w, http.StatusOK, meResponse{AccountID: id, Username: username})
}
