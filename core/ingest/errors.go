package ingest

import (
	"errors"
	"strings"
)

// Typed acquisition failures. Core code branches on these values with
// errors.Is; upstream wording is interpreted only by ClassifyError at the
// resolver boundary.
var (
	ErrVideoUnavailable = errors.New("video is unavailable or private")
	ErrAgeRestricted    = errors.New("video requires age verification")
	ErrRegionBlocked    = errors.New("video is not available in your region")
	ErrPrivateVideo     = errors.New("video is private")
	ErrBotCheck         = errors.New("source requires sign-in to confirm you're not a bot")
	ErrInvalidURL       = errors.New("invalid YouTube URL")
	ErrTooLong          = errors.New("video is too long")
	ErrTooLarge         = errors.New("audio payload is too large")
)

// ClassifyError maps an upstream error message to the typed enumeration.
// Returns nil when the message matches no known failure class.
func ClassifyError(message string) error {
	switch {
	case strings.Contains(message, "Video unavailable"):
		return ErrVideoUnavailable
	case strings.Contains(message, "Sign in to confirm your age"):
		return ErrAgeRestricted
	case strings.Contains(message, "This video is not available"):
		return ErrRegionBlocked
	case strings.Contains(message, "Private video"):
		return ErrPrivateVideo
	case strings.Contains(message, "not a bot"):
		return ErrBotCheck
	}
	return nil
}
