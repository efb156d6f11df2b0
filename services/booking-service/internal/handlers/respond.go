package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cruiserex/site/libs/httpx"
	"github.com/cruiserex/site/services/booking-service/internal/appointments"
)

var errInvalidJSON = errors.New("invalid json body")

// decodePayload reads a JSON object body. An empty body yields an empty payload.
func decodePayload(r *http.Request) (appointments.Payload, error) {
	p := appointments.Payload{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return appointments.Payload{}, nil
		}
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if p == nil {
		p = appointments.Payload{}
	}
	return p, nil
}

// writeServiceError maps service errors to status codes. Storage causes were
// already logged by the service; only the operation message reaches the client.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		ve *appointments.ValidationError
		se *appointments.StorageError
	)
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, ve.Message)
	case appointments.IsNotFound(err):
		httpx.WriteError(w, http.StatusNotFound, appointments.ErrNotFound.Error())
	case errors.As(err, &se):
		httpx.WriteError(w, http.StatusInternalServerError, se.Error())
	default:
		logger.Error("unexpected handler error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
