// Package request holds the JSON responses of the monitoring server.
package request

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/satla/pkg/logging"
)

// Message is a JSON body with a single message.
type Message struct {
	Message string `json:"message"`
}

// NewMessage creates a message, formatting it when args are given.
func NewMessage(message string, args ...any) *Message {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Message{Message: message}
}

// MessageError is a message with the error that caused it.
type MessageError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewMessageError creates a message with an error.
func NewMessageError(message string, err error) *MessageError {
	me := &MessageError{Message: message}
	if err != nil {
		me.Error = err.Error()
	}
	return me
}

// Encode writes v as JSON with the given status.
func Encode(l *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}
