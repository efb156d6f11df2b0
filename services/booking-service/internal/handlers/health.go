package handlers

import (
	"net/http"

	"github.com/cruiserex/site/libs/httpx"
)

// Health answers any method; it only proves the process is serving.
func Health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
