package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for lifecycle and bridge failures.
var (
	ErrAuthFailure      = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotInitialized   = errors.New("player not initialized")
	ErrInvalidTrackID   = errors.New("invalid track id")
	ErrChannelClosed    = errors.New("event channel closed")
	ErrDecodeFailure    = errors.New("event decode failure")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// SpeckError wraps an error with the operation that produced it and a
// user-friendly suggestion.
type SpeckError struct {
	Op         string
	Err        error
	Suggestion string
}

func (e *SpeckError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *SpeckError) Unwrap() error {
	return e.Err
}

// Op wraps err with the name of the failing operation.
func Op(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SpeckError{Op: op, Err: err}
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &SpeckError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Kind returns a stable code for err, for hosts that cannot match on
// error values across the bridge. Unknown errors map to "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthFailure):
		return "auth_failure"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrInvalidTrackID):
		return "invalid_track_id"
	case errors.Is(err, ErrChannelClosed):
		return "channel_closed"
	case errors.Is(err, ErrDecodeFailure):
		return "decode_failure"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	default:
		return "internal"
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var speckErr *SpeckError
	if errors.As(err, &speckErr) && speckErr.Suggestion != "" {
		return speckErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, ErrAuthFailure) || strings.Contains(errStr, "bad credentials"):
		return "Check your username and password, then log in again"
	case errors.Is(err, ErrNotAuthenticated):
		return "Log in before requesting tokens or starting the player"
	case errors.Is(err, ErrNotInitialized):
		return "Initialize the player before issuing playback commands"
	case errors.Is(err, ErrInvalidTrackID):
		return "Track ids are 22 base62 characters or a spotify:track: URI"
	case errors.Is(err, ErrChannelClosed):
		return "The player was shut down; initialize it again to receive events"
	case errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config"):
		return "Fix the configuration file and try again"
	}

	if strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
