package dialog

import (
	"fmt"
	"strings"

	"repairbot/internal/session"
)

// MaxProblemLen bounds the problem description, counted in runes.
const MaxProblemLen = 200

// ValidationError rejects user input that fails a stage guard: an empty phone
// or device, or an oversized problem description.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code identifies the error class for structured logs.
func (e *ValidationError) Code() string { return "VALIDATION" }

// UnknownServiceError rejects a service selection that does not resolve in
// the catalog.
type UnknownServiceError struct {
	ID string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q", e.ID)
}

func (e *UnknownServiceError) Code() string { return "UNKNOWN_SERVICE" }

// UnexpectedEventError rejects an event kind the current stage does not
// accept. No data is mutated and no stage is skipped.
type UnexpectedEventError struct {
	Stage session.Stage
	Event EventKind
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("unexpected %s event in stage %s", e.Event, e.Stage)
}

func (e *UnexpectedEventError) Code() string { return "UNEXPECTED_EVENT" }

// StateCorruptionError reports a broken invariant, such as a confirmation
// with missing draft fields. It is fatal to the session: the engine resets it
// to idle and surfaces the error instead of swallowing it.
type StateCorruptionError struct {
	Stage   session.Stage
	Missing []string
}

func (e *StateCorruptionError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("corrupted session in stage %s", e.Stage)
	}
	return fmt.Sprintf("corrupted session in stage %s: missing %s",
		e.Stage, strings.Join(e.Missing, ", "))
}

func (e *StateCorruptionError) Code() string { return "STATE_CORRUPTION" }
