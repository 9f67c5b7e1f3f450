package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every RPC response. Exactly one of Result and
// Error is meaningful, selected by OK.
type Envelope struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a taxonomy code and a human readable message
type ErrorBody struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Recoverable bool              `json:"recoverable,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// RespondJSON writes a JSON response with the given status code.
// It handles encoding errors safely by marshaling first, preventing
// partial responses if encoding fails after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		// Encoding failed - return 500 instead
		RespondError(w, http.StatusInternalServerError, &ErrorBody{
			Code:    "IOFailure",
			Message: "failed to encode response",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondResult writes a successful envelope
func RespondResult(w http.ResponseWriter, result interface{}) {
	RespondJSON(w, http.StatusOK, Envelope{OK: true, Result: result})
}

// RespondError writes a failed envelope
func RespondError(w http.ResponseWriter, status int, body *ErrorBody) {
	payload, err := json.Marshal(Envelope{OK: false, Error: body})
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
