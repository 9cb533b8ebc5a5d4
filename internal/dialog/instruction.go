package dialog

import (
	"repairbot/internal/catalog"
	"repairbot/internal/order"
	"repairbot/internal/session"
)

// Instruction tells the dispatch adapter what to render. The engine never
// talks to the transport itself; every side effect is expressed as a returned
// instruction.
type Instruction interface {
	isInstruction()
}

// ShowServiceMenu asks the adapter to render the service selection keyboard.
type ShowServiceMenu struct {
	Services []catalog.Service
}

// PromptKind identifies which input the user is being asked for.
type PromptKind string

const (
	PromptPhone   PromptKind = "phone"
	PromptDevice  PromptKind = "device"
	PromptProblem PromptKind = "problem"
)

// Prompt asks the adapter to request the next draft field. Selected is set on
// the phone prompt so the adapter can echo the chosen service.
type Prompt struct {
	Kind     PromptKind
	Selected *catalog.Service
}

// ShowSummary asks the adapter to render the confirmation summary with the
// collected draft and confirm/cancel controls.
type ShowSummary struct {
	Draft session.Draft
}

// OrderCreated reports a successful commit, carrying the stored order.
type OrderCreated struct {
	Order order.Order
}

// OrderCancelled reports that the user discarded the draft at confirmation.
type OrderCancelled struct{}

// Rejected reports invalid or unexpected input. The dialog state is unchanged
// and Reason is one of the package's typed errors for the adapter to render a
// re-prompt from.
type Rejected struct {
	Reason error
}

func (ShowServiceMenu) isInstruction() {}
func (Prompt) isInstruction()          {}
func (ShowSummary) isInstruction()     {}
func (OrderCreated) isInstruction()    {}
func (OrderCancelled) isInstruction()  {}
func (Rejected) isInstruction()        {}
