package recommend

import "errors"

var (
	ErrInvalidUserID      = errors.New("user id must be positive")
	ErrInvalidInteraction = errors.New("invalid interaction event")

	// ErrCollaboratorUnavailable wraps repository/profile-store failures.
	// Callers may retry; the engine never does.
	ErrCollaboratorUnavailable = errors.New("recommendation collaborator unavailable")

	ErrRecorderClosed = errors.New("feedback recorder is closed")
)
