// Package dialog implements the order-intake state machine. It is a pure
// core: events go in, render instructions come out, and the only side effect
// is the ledger commit on a confirmed order.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"repairbot/core/logger"
	"repairbot/internal/catalog"
	"repairbot/internal/order"
	"repairbot/internal/session"
)

// Identity is the stable user identity supplied by the transport, passed
// through without validation beyond existence.
type Identity struct {
	ID          int64
	DisplayName string
}

// Engine drives per-user dialogs over injected collaborators. It owns no
// global state: catalog, sessions, and ledger are all passed in, so instances
// are independent and trivially testable.
type Engine struct {
	catalog  *catalog.Catalog
	sessions *session.Store
	ledger   order.Ledger
	now      func() time.Time
}

// NewEngine wires the dialog engine with its collaborators.
func NewEngine(cat *catalog.Catalog, sessions *session.Store, ledger order.Ledger) *Engine {
	return &Engine{
		catalog:  cat,
		sessions: sessions,
		ledger:   ledger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// stepResult is what a single pure transition produces: the next session, the
// instruction to render, and whether the draft should be committed.
type stepResult struct {
	next   session.Session
	render Instruction
	commit bool
}

type stepFunc func(*Engine, session.Session, Event) (stepResult, error)

// transitions maps each stage to its handler. StartOrder is handled before
// the table because it restarts the dialog from any stage.
var transitions = map[session.Stage]stepFunc{
	session.StageIdle:            stepIdle,
	session.StageChoosingService: stepChoosingService,
	session.StageEnteringPhone:   stepEnteringPhone,
	session.StageEnteringDevice:  stepEnteringDevice,
	session.StageEnteringProblem: stepEnteringProblem,
	session.StageConfirmingOrder: stepConfirmingOrder,
}

// HandleEvent applies one inbound event to the user's session. Rejectable
// failures (validation, unknown service, unexpected event) come back as a
// Rejected instruction with the session untouched; a corrupted session is
// reset to idle and the error returned.
func (e *Engine) HandleEvent(ctx context.Context, user Identity, ev Event) (Instruction, error) {
	var render Instruction

	err := e.sessions.Update(user.ID, func(s session.Session) (session.Session, error) {
		res, stepErr := e.step(s, ev)
		if stepErr != nil {
			var corrupt *StateCorruptionError
			if errors.As(stepErr, &corrupt) {
				logger.Error(ctx, "service.dialog", "session.corrupted",
					slog.String("status", "fail"),
					slog.Int64("user_id", user.ID),
					slog.String("stage", string(s.Stage)),
					slog.String("err", stepErr.Error()),
				)
				return session.NewIdle(), stepErr
			}
			render = Rejected{Reason: stepErr}
			logger.Debug(ctx, "service.dialog", "event.rejected",
				slog.String("status", "skip"),
				slog.Int64("user_id", user.ID),
				slog.String("stage", string(s.Stage)),
				slog.String("event_kind", string(ev.Kind())),
				slog.String("err", stepErr.Error()),
			)
			return s, nil
		}

		if res.commit {
			o := order.Order{
				OwnerID:   user.ID,
				OwnerName: user.DisplayName,
				Service:   *s.Draft.Service,
				Phone:     s.Draft.Phone,
				Device:    s.Draft.Device,
				Problem:   s.Draft.Problem,
				Status:    order.StatusReceived,
				CreatedAt: e.now(),
			}
			id, commitErr := e.ledger.Commit(ctx, o)
			if commitErr != nil {
				// Nothing was stored; keep the session so the user can retry.
				return s, fmt.Errorf("dialog: commit order: %w", commitErr)
			}
			o.ID = id
			render = OrderCreated{Order: o}
			return res.next, nil
		}

		render = res.render
		logger.Debug(ctx, "service.dialog", "stage.transition",
			slog.String("status", "ok"),
			slog.Int64("user_id", user.ID),
			slog.String("stage", string(res.next.Stage)),
			slog.String("event_kind", string(ev.Kind())),
		)
		return res.next, nil
	})
	if err != nil {
		return nil, err
	}
	return render, nil
}

// QueryOrders returns the user's committed orders in creation order.
func (e *Engine) QueryOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	orders, err := e.ledger.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dialog: query orders: %w", err)
	}
	logger.Debug(ctx, "service.orders", "orders.listed",
		slog.String("status", "ok"),
		slog.Int64("owner_id", userID),
		slog.Int("orders", len(orders)),
	)
	return orders, nil
}

// InProgress reports whether the user has an active dialog.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

func (e *Engine) step(s session.Session, ev Event) (stepResult, error) {
	if _, ok := ev.(StartOrder); ok {
		// Restart from any stage: the old draft is discarded wholesale so it
		// can never merge with the new one.
		return stepResult{
			next:   session.Session{Stage: session.StageChoosingService},
			render: ShowServiceMenu{Services: e.catalog.List()},
		}, nil
	}

	h, ok := transitions[s.Stage]
	if !ok {
		return stepResult{}, &StateCorruptionError{Stage: s.Stage}
	}
	return h(e, s, ev)
}

func stepIdle(_ *Engine, s session.Session, ev Event) (stepResult, error) {
	return stepResult{}, &UnexpectedEventError{Stage: s.Stage, Event: ev.Kind()}
}

func stepChoosingService(e *Engine, s session.Session, ev Event) (stepResult, error) {
	sel, ok := ev.(ServiceSelected)
	if !ok {
		return stepResult{}, &UnexpectedEventError{Stage: s.Stage, Event: ev.Kind()}
	}
	svc, found := e.catalog.Get(sel.ID)
	if !found {
		return stepResult{}, &UnknownServiceError{ID: sel.ID}
	}
	snapshot := svc
	s.Draft.Service = &snapshot
	s.Stage = session.StageEnteringPhone
	return stepResult{next: s, render: Prompt{Kind: PromptPhone, Selected: &snapshot}}, nil
}

func stepEnteringPhone(_ *Engine, s session.Session, ev Event) (stepResult, error) {
	text, ok := ev.(Text)
	if !ok {
		return stepResult{}, &UnexpectedEventError{Stage: s.Stage, Event: ev.Kind()}
	}
	phone := strings.TrimSpace(text.Content)
	if phone == "" {
		return stepResult{}, &ValidationError{Field: "phone", Reason: "must not be empty"}
	}
	s.Draft.Phone = phone
	s.Stage = session.StageEnteringDevice
	return stepResult{next: s, render: Prompt{Kind: PromptDevice}}, nil
}

func stepEnteringDevice(_ *Engine, s session.Session, ev Event) (stepResult, error) {
	text, ok := ev.(Text)
	if !ok {
		return stepResult{}, &UnexpectedEventError{Stage: s.Stage, Event: ev.Kind()}
	}
	device := strings.TrimSpace(text.Content)
	if device == "" {
		return stepResult{}, &ValidationError{Field: "device", Reason: "must not be empty"}
	}
	s.Draft.Device = device
	s.Stage = session.StageEnteringProblem
	return stepResult{next: s, render: Prompt{Kind: PromptProblem}}, nil
}

func stepEnteringProblem(_ *Engine, s session.Session, ev Event) (stepResult, error) {
	text, ok := ev.(Text)
	if !ok {
		return stepResult{}, &UnexpectedEventError{Stage: s.Stage, Event: ev.Kind()}
	}
	if text.Content == "" {
		return stepResult{}, &ValidationError{Field: "problem", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(text.Content) > MaxProblemLen {
		return stepResult{}, &ValidationError{
			Field:  "problem",
			Reason: fmt.Sprintf("must be at most %d characters", MaxProblemLen),
		}
	}
	s.Draft.Problem = text.Content
	s.Stage = session.StageConfirmingOrder
	return stepResult{next: s, render: ShowSummary{Draft: s.Draft}}, nil
}

func stepConfirmingOrder(_ *Engine, s session.Session, ev Event) (stepResult, error) {
	confirm, ok := ev.(Confirm)
	if !ok {
		return stepResult{}, &UnexpectedEventError{Stage: s.Stage, Event: ev.Kind()}
	}
	if !confirm.Yes {
		return stepResult{next: session.NewIdle(), render: OrderCancelled{}}, nil
	}
	if !s.Draft.Complete() {
		return stepResult{}, &StateCorruptionError{Stage: s.Stage, Missing: s.Draft.MissingFields()}
	}
	return stepResult{next: session.NewIdle(), commit: true}, nil
}
