package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cruiserex/site/libs/auth"
	"github.com/cruiserex/site/libs/httpx"
	"github.com/cruiserex/site/services/booking-service/internal/guard"
	"github.com/cruiserex/site/services/booking-service/internal/sessions"
)

type sessionRequest struct {
	Secret string `json:"secret"`
}

// SessionHandler trades the admin secret for a short-lived session token
// (POST) and revokes one (DELETE).
type SessionHandler struct {
	guard    *guard.Guard
	sessions *sessions.Manager
	logger   *slog.Logger
}

func NewSessionHandler(g *guard.Guard, m *sessions.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{guard: g, sessions: m, logger: logger}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.login(w, r)
	case http.MethodDelete:
		h.logout(w, r)
	default:
		httpx.MethodNotAllowed(w, "POST, DELETE")
	}
}

func (h *SessionHandler) login(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}
	if !h.guard.CheckSecret(strings.TrimSpace(req.Secret)) {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s, err := h.sessions.Issue(r.Context())
	if err != nil {
		h.logger.Error("issue admin session failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, s)
}

func (h *SessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := guard.BearerToken(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, sessions.ErrRevoked) {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.Error("revoke admin session failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
