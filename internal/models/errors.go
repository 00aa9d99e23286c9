package models

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const WSTypeState = "state"

type StateEvent struct {
	ViewID string    `json:"view_id"`
	State  StateView `json:"state"`
}

const WSTypeCopied = "copied"

type CopyEvent struct {
	ViewID string `json:"view_id"`
	Copied bool   `json:"copied"`
}
