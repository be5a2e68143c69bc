package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a specific-id lookup resolves to nothing.
	ErrNotFound = errors.New("question not found")
	// ErrEmptyResultSet means a query succeeded but yielded zero usable questions.
	ErrEmptyResultSet = errors.New("no usable questions for the requested filter")
	// ErrNoQuestionsSelected is returned when a curated run starts with an empty selection.
	ErrNoQuestionsSelected = errors.New("no questions selected")
)

// FetchError reports a failed request to the question service: a transport
// failure, or a response outside the 2xx range.
type FetchError struct {
	Op     string // operation, e.g. "load questions"
	Status int    // HTTP status, 0 when no response was received
	Err    error  // underlying transport error, nil on bad status
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }
