package shared

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func SendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func SendError(w http.ResponseWriter, message string, status int) {
	SendJSON(w, status, ErrorResponse{Error: message})
}

func SendValidationError(w http.ResponseWriter, errs ValidationErrors) {
	SendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: errs.Fields()})
}
