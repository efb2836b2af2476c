package server

import (
	"encoding/json"
	"net/http"

	"github.com/teranos/recipeviz/errors"
	grapherror "github.com/teranos/recipeviz/graph/error"
)

// maxRequestBody caps JSON request bodies
const maxRequestBody = 1 << 20

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeGraphError maps a GraphError category onto an HTTP status and writes
// its user-facing message
func writeGraphError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case grapherror.IsCategory(err, grapherror.CategoryValidation):
		status = http.StatusBadRequest
	case grapherror.IsCategory(err, grapherror.CategoryFetch):
		status = http.StatusBadGateway
	}
	writeError(w, status, grapherror.UIMessage(err))
}

// readJSON reads and decodes a JSON request body
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return err
	}
	return nil
}

// requireMethod checks if the request method matches the expected method
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
