package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Warn("Error encoding response", zap.Error(err))
	}
}
