package discord

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature           = errors.New("invalid request signature")
	ErrMalformedPayload           = errors.New("malformed interaction payload")
	ErrUnsupportedInteractionType = errors.New("unsupported interaction type")
	ErrMissingRequiredOption      = errors.New("missing required option")
	ErrTypeMismatch               = errors.New("option type mismatch")
	ErrResolutionFailure          = errors.New("resolved entity not found")
	ErrMissingField               = errors.New("missing modal field")
	ErrTimeout                    = errors.New("discord request timed out")

	// Transiciones inválidas del ResponseState.
	ErrAlreadyResponded = errors.New("interaction already responded")
	ErrNotResponded     = errors.New("interaction not responded yet")
)

// HandlerExecutionError wraps whatever a handler returned or panicked with.
type HandlerExecutionError struct {
	Kind          Kind
	Key           string // command name or custom id prefix
	InteractionID string
	Err           error
}

func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("handler %s %q (interaction %s): %v", e.Kind, e.Key, e.InteractionID, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error { return e.Err }

// PanicError is what a recovered handler panic becomes.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }
