// Package types holds the JSON response envelopes shared by every handler.
package types

// SuccessEnvelope wraps successful payloads so clients always unwrap "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a request failure. Details carries structured
// context such as per-field validation messages.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under the "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
