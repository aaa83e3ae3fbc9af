// Package handler provides the HTTP surface of the training console.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/Mousewarriors/SEIM-Project/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError maps an AppError to its HTTP status; anything else is an
// opaque 500.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
			"code":    appErr.Code,
			"error":   appErr.Message,
			"details": appErr.Details,
		})
		return
	}
	respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"code":  apperrors.CodeInternalError,
		"error": "internal server error",
	})
}
