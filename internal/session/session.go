// Package session tracks, per user, where they are in the order-intake dialog
// and the partially collected order draft.
package session

import "repairbot/internal/catalog"

// Stage identifies a step of the order-intake conversation.
type Stage string

const (
	// StageIdle indicates there is no active dialog with the user.
	StageIdle Stage = "idle"
	// StageChoosingService waits for a service selection from the inline menu.
	StageChoosingService Stage = "choosing_service"
	// StageEnteringPhone waits for the contact phone number.
	StageEnteringPhone Stage = "entering_phone"
	// StageEnteringDevice waits for the device model.
	StageEnteringDevice Stage = "entering_device"
	// StageEnteringProblem waits for the problem description.
	StageEnteringProblem Stage = "entering_problem"
	// StageConfirmingOrder waits for the final confirm/cancel decision.
	StageConfirmingOrder Stage = "confirming_order"
)

// Draft is the partially completed order accumulated across dialog stages.
// Fields are populated monotonically in stage order: a later field is never
// set while an earlier one is absent.
type Draft struct {
	Service *catalog.Service
	Phone   string
	Device  string
	Problem string
}

// Complete reports whether every draft field required for commit is present.
func (d Draft) Complete() bool {
	return d.Service != nil && d.Phone != "" && d.Device != "" && d.Problem != ""
}

// MissingFields names the draft fields that are still empty, in stage order.
func (d Draft) MissingFields() []string {
	var missing []string
	if d.Service == nil {
		missing = append(missing, "service")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if d.Device == "" {
		missing = append(missing, "device")
	}
	if d.Problem == "" {
		missing = append(missing, "problem")
	}
	return missing
}

// Session stores the dialog stage and draft for one user.
type Session struct {
	Stage Stage
	Draft Draft
}

// NewIdle returns a fresh idle session with an empty draft.
func NewIdle() Session {
	return Session{Stage: StageIdle}
}

// InProgress reports whether the session has an active dialog.
func (s Session) InProgress() bool {
	return s.Stage != StageIdle
}
