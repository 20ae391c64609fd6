package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medba/medba/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps a classified error onto its status code and user-safe
// message. Only genuinely unexpected failures are worth an error-level log.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		logger.Error("request failed", "error", err)
	}
	writeMessage(w, kind.HTTPStatus(), kind.Message())
}
