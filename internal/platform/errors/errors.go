package apperrors

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoSession       = errors.New("no such session")
	ErrRowOutOfRange   = errors.New("row index out of range")
	ErrUnknownSchema   = errors.New("unknown question schema")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("option not offered by question")

	ErrMissingIdentity    = errors.New("respondent name is required")
	ErrNoValidReadings    = errors.New("no valid reading")
	ErrTransportFailure   = errors.New("transport failure")
	ErrApplicationFailure = errors.New("collector reported failure")

	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrSessionLocked    = errors.New("session is locked after submission")
)

const (
	MsgSubmitted       = "Submission Complete! All readings sent successfully."
	MsgMissingIdentity = "Please enter your name / student ID."
	MsgNoValidReadings = "Please enter at least one valid reading."
	MsgSubmitFailed    = "Failed to submit readings. Please try again."
)

// ServerMessageError carries the collector's own explanation for a rejected
// submission so it can be shown next to the generic failure text.
type ServerMessageError struct {
	Kind    error
	Message string
}

func (e *ServerMessageError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *ServerMessageError) Unwrap() error { return e.Kind }

// UserMessage maps an error to the single line shown in the form's modal.
// A nil error is the success message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return MsgSubmitted
	case errors.Is(err, ErrMissingIdentity):
		return MsgMissingIdentity
	case errors.Is(err, ErrNoValidReadings):
		return MsgNoValidReadings
	case errors.Is(err, ErrTransportFailure), errors.Is(err, ErrApplicationFailure):
		var serverErr *ServerMessageError
		if errors.As(err, &serverErr) && strings.TrimSpace(serverErr.Message) != "" {
			return MsgSubmitFailed + " (" + strings.TrimSpace(serverErr.Message) + ")"
		}
		return MsgSubmitFailed
	default:
		return err.Error()
	}
}
