package scanclient

import (
	"errors"
	"fmt"
)

// FallbackMessage is shown when the scan service gives no usable detail.
const FallbackMessage = "Scan failed"

// SubmissionError is any failure of a scan submission: bad input, transport
// failure, a non-2xx reply or a reply that is not a valid scan result.
type SubmissionError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan submission: %s: %v", e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("scan submission: %s (status %d)", e.Message, e.StatusCode)
	}
	return "scan submission: " + e.Message
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Alert is the text shown to the user.
func (e *SubmissionError) Alert() string {
	return "Error: " + e.Message
}

// AlertMessage returns the user-facing text for err.
func AlertMessage(err error) string {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Alert()
	}
	return "Error: " + FallbackMessage
}

// HistoryLoadError reports that prior history could not be fetched. Callers
// log it and continue with an empty history.
type HistoryLoadError struct {
	StatusCode int
	Err        error
}

func (e *HistoryLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("loading history: %v", e.Err)
	}
	return fmt.Sprintf("loading history: unexpected status %d", e.StatusCode)
}

func (e *HistoryLoadError) Unwrap() error { return e.Err }
