package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Envelope is the JSON shape every service responds with.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData responds with a successful envelope wrapping v.
func WriteData(w http.ResponseWriter, r *http.Request, status int, v any) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Data:      v,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// WriteMessage responds with a successful envelope carrying a message alongside the payload.
func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string, v any) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   msg,
		Data:      v,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// WriteError responds with a failed envelope; data is always null.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Error:     msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}
