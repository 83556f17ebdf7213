package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Error body as the cooperative backend renders it
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func renderJSON(w http.ResponseWriter, data any) {
	renderJSONWithStatus(w, data, http.StatusOK)
}

func renderError(w http.ResponseWriter, message string, code int) {
	renderJSONWithStatus(w, errorResponse{Status: code, Message: message}, code)
}

// bind decodes request body into T or renders 400
func bind[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		renderError(w, "Failed to parse JSON: "+err.Error(), http.StatusBadRequest)
		return value, false
	}

	return value, true
}

// renderJSONWithStatus sends data as json and enforces status code
func renderJSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
