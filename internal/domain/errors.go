package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for matching with errors.Is. The struct errors below wrap
// them and carry the details needed for skip diagnostics.
var (
	ErrNotFound            = errors.New("event not found")
	ErrAmbiguousID         = errors.New("ambiguous event id")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrMalformedTimestamp  = errors.New("malformed timestamp")
	ErrBelowThreshold      = errors.New("magnitude below threshold")
)

// LookupError reports an identifier that resolved to zero or several rows.
type LookupError struct {
	EventID string
	Matches int
}

func (e *LookupError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("event %q: %v", e.EventID, ErrNotFound)
	}
	return fmt.Sprintf("event %q matches %d rows: %v", e.EventID, e.Matches, ErrAmbiguousID)
}

func (e *LookupError) Unwrap() error {
	if e.Matches == 0 {
		return ErrNotFound
	}
	return ErrAmbiguousID
}

// InsufficientHistoryError reports a target with fewer qualifying past events
// than requested.
type InsufficientHistoryError struct {
	EventID string
	Have    int
	Want    int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("event %q: %v: %d past events, need %d", e.EventID, ErrInsufficientHistory, e.Have, e.Want)
}

func (e *InsufficientHistoryError) Unwrap() error { return ErrInsufficientHistory }

// MalformedTimestampError reports a missing, unparseable or out-of-order
// timestamp.
type MalformedTimestampError struct {
	EventID string
	Value   string
	Reason  string
}

func (e *MalformedTimestampError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("event %q: %v %q: %s", e.EventID, ErrMalformedTimestamp, e.Value, e.Reason)
	}
	return fmt.Sprintf("event %q: %v: %s", e.EventID, ErrMalformedTimestamp, e.Reason)
}

func (e *MalformedTimestampError) Unwrap() error { return ErrMalformedTimestamp }

func outOfOrder(prev, cur Event) *MalformedTimestampError {
	return &MalformedTimestampError{
		EventID: cur.ID,
		Value:   cur.OccurredAt.Format(time.RFC3339Nano),
		Reason:  fmt.Sprintf("earlier than preceding event %q", prev.ID),
	}
}

// BelowThresholdError reports an aftershock query for an event too small to
// be a trigger.
type BelowThresholdError struct {
	EventID   string
	Magnitude float64
	Threshold float64
}

func (e *BelowThresholdError) Error() string {
	return fmt.Sprintf("event %q: %v: magnitude %g < %g", e.EventID, ErrBelowThreshold, e.Magnitude, e.Threshold)
}

func (e *BelowThresholdError) Unwrap() error { return ErrBelowThreshold }

// SkipReason maps an extraction error to a short label for logs and metrics.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguousID):
		return "ambiguous_id"
	case errors.Is(err, ErrBelowThreshold):
		return "below_threshold"
	default:
		return "other"
	}
}
