package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

// writeJSON сериализует ответ в JSON.
func writeJSON(w http.ResponseWriter, status int, data any, logger *log.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Error("failed to encode JSON response")
	}
}

// writeError отдаёт ошибку в едином формате {"error": "..."}.
func writeError(w http.ResponseWriter, status int, message string, logger *log.Entry) {
	writeJSON(w, status, map[string]string{"error": message}, logger)
}

// statusFor отображает доменную ошибку на HTTP-статус.
func statusFor(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
