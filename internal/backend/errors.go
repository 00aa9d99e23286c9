package backend

import (
	"encoding/json"
	"strings"
)

// BackendError is a non-2xx answer from the summarization backend. Message is
// what the user sees: the body's "error" field, or a generic fallback.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string { return e.Message }

// TransportError means no response was received at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// errorMessage pulls a message out of an error body. Both the flat
// {"error": "..."} shape and the {"error": {"message": "..."}} envelope are
// understood.
func errorMessage(body []byte) (string, bool) {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return "", false
	}

	var flat string
	if err := json.Unmarshal(envelope.Error, &flat); err == nil {
		flat = strings.TrimSpace(flat)
		return flat, flat != ""
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		msg := strings.TrimSpace(nested.Message)
		return msg, msg != ""
	}

	return "", false
}
