package dialog

// EventKind discriminates inbound dialog events for logging and error
// reporting.
type EventKind string

const (
	EventStartOrder      EventKind = "start_order"
	EventServiceSelected EventKind = "service_selected"
	EventText            EventKind = "text"
	EventConfirm         EventKind = "confirm"
)

// Event is an inbound structured event delivered by the dispatch adapter.
// The set is sealed: only the types below are accepted by the engine.
type Event interface {
	Kind() EventKind
}

// StartOrder begins a new order dialog, discarding any draft in progress.
type StartOrder struct{}

func (StartOrder) Kind() EventKind { return EventStartOrder }

// ServiceSelected carries the id of the service the user picked from the menu.
type ServiceSelected struct {
	ID string
}

func (ServiceSelected) Kind() EventKind { return EventServiceSelected }

// Text carries free-form user input: phone number, device model, or problem
// description depending on the current stage.
type Text struct {
	Content string
}

func (Text) Kind() EventKind { return EventText }

// Confirm carries the final yes/no decision on the order summary.
type Confirm struct {
	Yes bool
}

func (Confirm) Kind() EventKind { return EventConfirm }
