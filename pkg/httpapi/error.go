package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the JSON shape of every error response.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, &ErrorEnvelope{Error: message})
}
