// Package handler contains the HTTP handlers: decode the request, validate
// it, call a usecase, and shape the response. Every handled failure becomes a
// {message} JSON body with a matching status code.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Miro-wq/phonebook-api/internal/payload"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, payload.MessageResponse{Message: message})
}

func respondInternalError(w http.ResponseWriter) {
	respondMessage(w, http.StatusInternalServerError, "something went wrong")
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
