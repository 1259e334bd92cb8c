package candidates

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no candidate has the requested id.
var ErrNotFound = errors.New("candidate not found")

// DataLoadError reports a candidate source that could not be turned into a store.
// It is fatal at startup.
type DataLoadError struct {
	Source string
	Index  int // record position, -1 when the whole source failed
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("load candidates from %s", e.Source)
	if e.Index >= 0 {
		msg += fmt.Sprintf(": record %d", e.Index)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
