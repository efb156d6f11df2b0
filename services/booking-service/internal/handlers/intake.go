package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cruiserex/site/libs/httpx"
	"github.com/cruiserex/site/services/booking-service/internal/appointments"
	"github.com/cruiserex/site/services/booking-service/internal/model"
)

type intakeResponse struct {
	Message     string            `json:"message"`
	Appointment model.Appointment `json:"appointment"`
	Warning     string            `json:"warning,omitempty"`
}

// IntakeHandler is the public booking endpoint: create, then notify.
type IntakeHandler struct {
	svc    *appointments.Service
	logger *slog.Logger
}

func NewIntakeHandler(svc *appointments.Service, logger *slog.Logger) *IntakeHandler {
	return &IntakeHandler{svc: svc, logger: logger}
}

func (h *IntakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}

	p, err := decodePayload(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errInvalidJSON.Error())
		return
	}

	appt, err := h.svc.Book(r.Context(), p)
	resp := intakeResponse{Message: "Appointment created", Appointment: appt}
	if err != nil {
		if !appointments.IsNotification(err) {
			writeServiceError(w, h.logger, err)
			return
		}
		// the record is saved; tell the caller the email did not go out
		resp.Warning = err.Error()
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}
