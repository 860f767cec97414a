package domain

import (
	"errors"
	"fmt"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrTaskNotFound     = errors.New("task not found")
)

// ParseError reports a malformed clock string or label. Recoverable by
// re-entering the single field.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// InvalidRangeError reports end <= start where day-wrap is disallowed.
// Surfaced verbatim, never auto-corrected.
type InvalidRangeError struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is not after start %s", e.End.Clock(), e.Start.Clock())
}

// CapacityExceededError reports that a block's tasks outgrew its
// duration, carrying the exact overage in minutes.
type CapacityExceededError struct {
	Block         EnergyLabel
	ExcessMinutes int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("task durations exceed %s block capacity by %d minutes", e.Block, e.ExcessMinutes)
}

// UnresolvableOverlapError reports that overlap resolution could not
// satisfy every block invariant; the caller must re-enter all three
// blocks.
type UnresolvableOverlapError struct {
	Block  EnergyLabel
	Reason string
}

func (e *UnresolvableOverlapError) Error() string {
	return fmt.Sprintf("cannot resolve overlap at %s block: %s", e.Block, e.Reason)
}
