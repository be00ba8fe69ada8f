package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrMissingDriver is returned when the renderer has no prompt driver.
	ErrMissingDriver = errors.New("tui: prompt driver is nil")
)
