package dialog_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"repairbot/internal/catalog"
	"repairbot/internal/dialog"
	"repairbot/internal/order"
	"repairbot/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = dialog.Identity{ID: 1, DisplayName: "Alice"}

type fixture struct {
	engine   *dialog.Engine
	sessions *session.Store
	ledger   *order.MemoryLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := session.NewStore()
	ledger := order.NewMemoryLedger()
	return &fixture{
		engine:   dialog.NewEngine(catalog.Default(), sessions, ledger),
		sessions: sessions,
		ledger:   ledger,
	}
}

// advance drives the dialog to the confirmation summary.
func (f *fixture) advance(t *testing.T, user dialog.Identity) {
	t.Helper()
	ctx := context.Background()
	steps := []dialog.Event{
		dialog.StartOrder{},
		dialog.ServiceSelected{ID: "battery"},
		dialog.Text{Content: "+1-555-0100"},
		dialog.Text{Content: "iPhone 12"},
		dialog.Text{Content: "Won't hold a charge"},
	}
	for _, ev := range steps {
		_, err := f.engine.HandleEvent(ctx, user, ev)
		require.NoError(t, err)
	}
}

func TestHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ins, err := f.engine.HandleEvent(ctx, alice, dialog.StartOrder{})
	require.NoError(t, err)
	menu, ok := ins.(dialog.ShowServiceMenu)
	require.True(t, ok, "expected service menu, got %T", ins)
	assert.Len(t, menu.Services, 7)
	assert.True(t, f.engine.InProgress(alice.ID))

	ins, err = f.engine.HandleEvent(ctx, alice, dialog.ServiceSelected{ID: "battery"})
	require.NoError(t, err)
	prompt, ok := ins.(dialog.Prompt)
	require.True(t, ok, "expected phone prompt, got %T", ins)
	assert.Equal(t, dialog.PromptPhone, prompt.Kind)
	require.NotNil(t, prompt.Selected)
	assert.Equal(t, "battery", prompt.Selected.ID)

	ins, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "+1-555-0100"})
	require.NoError(t, err)
	prompt, ok = ins.(dialog.Prompt)
	require.True(t, ok)
	assert.Equal(t, dialog.PromptDevice, prompt.Kind)

	ins, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "iPhone 12"})
	require.NoError(t, err)
	prompt, ok = ins.(dialog.Prompt)
	require.True(t, ok)
	assert.Equal(t, dialog.PromptProblem, prompt.Kind)

	ins, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "Won't hold a charge"})
	require.NoError(t, err)
	summary, ok := ins.(dialog.ShowSummary)
	require.True(t, ok, "expected summary, got %T", ins)
	require.NotNil(t, summary.Draft.Service)
	assert.Equal(t, "battery", summary.Draft.Service.ID)
	assert.Equal(t, "+1-555-0100", summary.Draft.Phone)
	assert.Equal(t, "iPhone 12", summary.Draft.Device)
	assert.Equal(t, "Won't hold a charge", summary.Draft.Problem)

	ins, err = f.engine.HandleEvent(ctx, alice, dialog.Confirm{Yes: true})
	require.NoError(t, err)
	created, ok := ins.(dialog.OrderCreated)
	require.True(t, ok, "expected created order, got %T", ins)
	assert.Equal(t, "ORD-1-1", created.Order.ID)
	assert.Equal(t, alice.ID, created.Order.OwnerID)
	assert.Equal(t, "Alice", created.Order.OwnerName)
	assert.Equal(t, order.StatusReceived, created.Order.Status)
	assert.False(t, created.Order.CreatedAt.IsZero())

	assert.False(t, f.engine.InProgress(alice.ID), "dialog ends after commit")

	orders, err := f.engine.QueryOrders(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1-1", orders[0].ID)
	assert.Equal(t, "iPhone 12", orders[0].Device)
}

func TestCancelCommitsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.advance(t, alice)

	ins, err := f.engine.HandleEvent(ctx, alice, dialog.Confirm{Yes: false})
	require.NoError(t, err)
	_, ok := ins.(dialog.OrderCancelled)
	require.True(t, ok, "expected cancellation, got %T", ins)
	assert.False(t, f.engine.InProgress(alice.ID))

	orders, err := f.engine.QueryOrders(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStartOrderRestartsFromAnyStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.advance(t, alice)

	ins, err := f.engine.HandleEvent(ctx, alice, dialog.StartOrder{})
	require.NoError(t, err)
	_, ok := ins.(dialog.ShowServiceMenu)
	require.True(t, ok, "expected fresh service menu, got %T", ins)

	// The old draft must be gone: reaching the summary again shows only the
	// newly entered data.
	_, err = f.engine.HandleEvent(ctx, alice, dialog.ServiceSelected{ID: "screen"})
	require.NoError(t, err)
	_, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "+1-555-0200"})
	require.NoError(t, err)
	_, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "Pixel 8"})
	require.NoError(t, err)
	ins, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "Cracked glass"})
	require.NoError(t, err)

	summary, ok := ins.(dialog.ShowSummary)
	require.True(t, ok)
	assert.Equal(t, "screen", summary.Draft.Service.ID)
	assert.Equal(t, "+1-555-0200", summary.Draft.Phone)
	assert.Equal(t, "Pixel 8", summary.Draft.Device)
	assert.Equal(t, "Cracked glass", summary.Draft.Problem)
}

func TestRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown service keeps the menu stage", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.HandleEvent(ctx, alice, dialog.StartOrder{})
		require.NoError(t, err)

		ins, err := f.engine.HandleEvent(ctx, alice, dialog.ServiceSelected{ID: "teleport"})
		require.NoError(t, err)
		rejected, ok := ins.(dialog.Rejected)
		require.True(t, ok, "expected rejection, got %T", ins)
		var unknown *dialog.UnknownServiceError
		require.ErrorAs(t, rejected.Reason, &unknown)
		assert.Equal(t, "teleport", unknown.ID)

		// A valid selection still works afterwards.
		ins, err = f.engine.HandleEvent(ctx, alice, dialog.ServiceSelected{ID: "battery"})
		require.NoError(t, err)
		_, ok = ins.(dialog.Prompt)
		assert.True(t, ok)
	})

	t.Run("text while idle is unexpected", func(t *testing.T) {
		f := newFixture(t)

		ins, err := f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "hello"})
		require.NoError(t, err)
		rejected, ok := ins.(dialog.Rejected)
		require.True(t, ok)
		var unexpected *dialog.UnexpectedEventError
		require.ErrorAs(t, rejected.Reason, &unexpected)
		assert.False(t, f.engine.InProgress(alice.ID))
	})

	t.Run("confirm before summary is unexpected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.HandleEvent(ctx, alice, dialog.StartOrder{})
		require.NoError(t, err)

		ins, err := f.engine.HandleEvent(ctx, alice, dialog.Confirm{Yes: true})
		require.NoError(t, err)
		rejected, ok := ins.(dialog.Rejected)
		require.True(t, ok)
		var unexpected *dialog.UnexpectedEventError
		require.ErrorAs(t, rejected.Reason, &unexpected)
	})

	t.Run("blank phone is rejected and stage kept", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.HandleEvent(ctx, alice, dialog.StartOrder{})
		require.NoError(t, err)
		_, err = f.engine.HandleEvent(ctx, alice, dialog.ServiceSelected{ID: "battery"})
		require.NoError(t, err)

		ins, err := f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "   "})
		require.NoError(t, err)
		rejected, ok := ins.(dialog.Rejected)
		require.True(t, ok)
		var validation *dialog.ValidationError
		require.ErrorAs(t, rejected.Reason, &validation)
		assert.Equal(t, "phone", validation.Field)

		// Retry succeeds without restarting.
		ins, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "+1-555-0100"})
		require.NoError(t, err)
		prompt, ok := ins.(dialog.Prompt)
		require.True(t, ok)
		assert.Equal(t, dialog.PromptDevice, prompt.Kind)
	})
}

func TestProblemLengthLimit(t *testing.T) {
	ctx := context.Background()

	toProblem := func(t *testing.T, f *fixture) {
		t.Helper()
		_, err := f.engine.HandleEvent(ctx, alice, dialog.StartOrder{})
		require.NoError(t, err)
		_, err = f.engine.HandleEvent(ctx, alice, dialog.ServiceSelected{ID: "battery"})
		require.NoError(t, err)
		_, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "+1-555-0100"})
		require.NoError(t, err)
		_, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "iPhone 12"})
		require.NoError(t, err)
	}

	t.Run("should accept exactly the limit", func(t *testing.T) {
		f := newFixture(t)
		toProblem(t, f)

		// Multibyte runes: the limit counts characters, not bytes.
		ins, err := f.engine.HandleEvent(ctx, alice, dialog.Text{Content: strings.Repeat("ы", dialog.MaxProblemLen)})
		require.NoError(t, err)
		_, ok := ins.(dialog.ShowSummary)
		assert.True(t, ok, "expected summary, got %T", ins)
	})

	t.Run("should reject one past the limit and keep the stage", func(t *testing.T) {
		f := newFixture(t)
		toProblem(t, f)

		ins, err := f.engine.HandleEvent(ctx, alice, dialog.Text{Content: strings.Repeat("ы", dialog.MaxProblemLen+1)})
		require.NoError(t, err)
		rejected, ok := ins.(dialog.Rejected)
		require.True(t, ok, "expected rejection, got %T", ins)
		var validation *dialog.ValidationError
		require.ErrorAs(t, rejected.Reason, &validation)
		assert.Equal(t, "problem", validation.Field)

		// Still waiting for the problem description.
		ins, err = f.engine.HandleEvent(ctx, alice, dialog.Text{Content: "short version"})
		require.NoError(t, err)
		_, ok = ins.(dialog.ShowSummary)
		assert.True(t, ok)
	})
}

func TestCorruptedSessionResets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Confirmation stage with a hole in the draft cannot happen through the
	// engine; simulate external corruption directly in the store.
	f.sessions.Put(alice.ID, session.Session{
		Stage: session.StageConfirmingOrder,
		Draft: session.Draft{Phone: "+1-555-0100"},
	})

	_, err := f.engine.HandleEvent(ctx, alice, dialog.Confirm{Yes: true})
	var corrupt *dialog.StateCorruptionError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Missing, "service")

	assert.False(t, f.engine.InProgress(alice.ID), "session reset to idle")

	orders, err := f.engine.QueryOrders(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

type failingLedger struct {
	order.Ledger
	fail bool
}

func (l *failingLedger) Commit(ctx context.Context, o order.Order) (string, error) {
	if l.fail {
		return "", fmt.Errorf("connection refused")
	}
	return l.Ledger.Commit(ctx, o)
}

func TestCommitFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewStore()
	ledger := &failingLedger{Ledger: order.NewMemoryLedger(), fail: true}
	engine := dialog.NewEngine(catalog.Default(), sessions, ledger)

	steps := []dialog.Event{
		dialog.StartOrder{},
		dialog.ServiceSelected{ID: "battery"},
		dialog.Text{Content: "+1-555-0100"},
		dialog.Text{Content: "iPhone 12"},
		dialog.Text{Content: "Won't hold a charge"},
	}
	for _, ev := range steps {
		_, err := engine.HandleEvent(ctx, alice, ev)
		require.NoError(t, err)
	}

	_, err := engine.HandleEvent(ctx, alice, dialog.Confirm{Yes: true})
	require.Error(t, err)
	assert.True(t, engine.InProgress(alice.ID), "session survives a failed commit")

	// Once storage recovers the same confirmation goes through.
	ledger.fail = false
	ins, err := engine.HandleEvent(ctx, alice, dialog.Confirm{Yes: true})
	require.NoError(t, err)
	created, ok := ins.(dialog.OrderCreated)
	require.True(t, ok)
	assert.Equal(t, "ORD-1-1", created.Order.ID)
}

func TestConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const users = 8
	var wg sync.WaitGroup
	for i := int64(1); i <= users; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			user := dialog.Identity{ID: id, DisplayName: fmt.Sprintf("User %d", id)}
			steps := []dialog.Event{
				dialog.StartOrder{},
				dialog.ServiceSelected{ID: "battery"},
				dialog.Text{Content: "+1-555-0100"},
				dialog.Text{Content: fmt.Sprintf("Device %d", id)},
				dialog.Text{Content: "Broken"},
				dialog.Confirm{Yes: true},
			}
			for _, ev := range steps {
				_, err := f.engine.HandleEvent(ctx, user, ev)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	for i := int64(1); i <= users; i++ {
		orders, err := f.engine.QueryOrders(ctx, i)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, fmt.Sprintf("ORD-%d-1", i), orders[0].ID)
		assert.Equal(t, fmt.Sprintf("Device %d", i), orders[0].Device)
	}
}
