package model

import "time"

// Notice is a one-shot message surfaced to the user in the status bar,
// typically after a remote operation fails. It is never retried and never
// persisted; it is cleared on the next notice or after its display window.
type Notice struct {
	// Message is the human-readable notice text.
	Message string `json:"message"`

	// IsError distinguishes failure notices from informational ones.
	IsError bool `json:"is_error"`

	// CreatedAt is when this notice was raised.
	CreatedAt time.Time `json:"created_at"`
}
