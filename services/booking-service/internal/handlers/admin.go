package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cruiserex/site/libs/httpx"
	"github.com/cruiserex/site/services/booking-service/internal/appointments"
	"github.com/cruiserex/site/services/booking-service/internal/guard"
)

const adminAllow = "GET, POST, PUT, PATCH, DELETE"

// AdminHandler serves guarded CRUD over appointments on a single path,
// dispatching on the request method.
type AdminHandler struct {
	svc    *appointments.Service
	guard  *guard.Guard
	logger *slog.Logger
}

func NewAdminHandler(svc *appointments.Service, g *guard.Guard, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, guard: g, logger: logger}
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.guard.Authorized(r) {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut, http.MethodPatch:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		httpx.MethodNotAllowed(w, adminAllow)
	}
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) create(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}
	appt, err := h.svc.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, appt)
}

func (h *AdminHandler) update(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		id = p.ID()
	}
	appt, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appt)
}

func (h *AdminHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
