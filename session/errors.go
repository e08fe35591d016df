package session

import "errors"

var (
	// ErrInvalidConfig is returned by Configure for unusable settings.
	ErrInvalidConfig = errors.New("invalid quiz configuration")
	// ErrNotRunning is returned when an answer arrives outside a running session.
	ErrNotRunning = errors.New("quiz session is not running")
	// ErrNoQuestions means the question source produced nothing usable.
	ErrNoQuestions = errors.New("no well-formed questions")
	// ErrNoSource is reported as the fallback reason when no source is wired.
	ErrNoSource = errors.New("no question source configured")
)
