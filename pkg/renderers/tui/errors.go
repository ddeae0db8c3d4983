package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSelection is returned when a driver answers a select prompt with
	// an index outside its options.
	ErrNoSelection = errors.New("tui: selection out of range")
)
