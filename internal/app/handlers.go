package app

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"repairbot/core/telegram/callbacks"
	tghelpers "repairbot/core/telegram/helpers"
	"repairbot/core/telegram/ui"
	"repairbot/internal/dialog"
)

var _ ui.FallbackProvider = (*App)(nil)

func identityFrom(c tele.Context) dialog.Identity {
	user := c.Sender()
	if user == nil {
		return dialog.Identity{}
	}
	return dialog.Identity{ID: user.ID, DisplayName: user.FirstName}
}

// dispatch feeds one structured event into the engine and renders the result.
func (a *App) dispatch(c tele.Context, ev dialog.Event) error {
	ctx := tghelpers.BuildContext(c)
	ins, err := a.engine.HandleEvent(ctx, identityFrom(c), ev)
	if err != nil {
		var corrupt *dialog.StateCorruptionError
		if errors.As(err, &corrupt) {
			_ = tghelpers.SendText(c, sessionResetText)
		} else {
			_ = tghelpers.SendText(c, internalErrorText)
		}
		return err
	}
	return a.render(c, ins)
}

// HandleText implements the router's Dialog interface: free-form text from a
// user with an active dialog is delivered as a Text event.
func (a *App) HandleText(c tele.Context) error {
	return a.dispatch(c, dialog.Text{Content: c.Text()})
}

// InProgress implements the router's Dialog interface.
func (a *App) InProgress(userID int64) bool {
	return a.engine.InProgress(userID)
}

func (a *App) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, welcomeText, &tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendMD(c, helpText)
}

func (a *App) handleServices(c tele.Context) error {
	return tghelpers.SendMD(c, servicesText(a.catalog.List()))
}

func (a *App) handleContact(c tele.Context) error {
	return tghelpers.SendMD(c, contactText)
}

func (a *App) handleNewOrder(c tele.Context) error {
	return a.dispatch(c, dialog.StartOrder{})
}

func (a *App) handleMyOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orders, err := a.engine.QueryOrders(ctx, c.Sender().ID)
	if err != nil {
		_ = tghelpers.SendText(c, internalErrorText)
		return err
	}
	if len(orders) == 0 {
		return tghelpers.SendText(c, noOrdersText)
	}
	return tghelpers.SendMD(c, ordersListText(orders))
}

// handleMenuText routes reply-keyboard button presses; it runs only when the
// user has no active dialog.
func (a *App) handleMenuText(c tele.Context) error {
	switch c.Text() {
	case btnNewOrder:
		return a.handleNewOrder(c)
	case btnMyOrders:
		return a.handleMyOrders(c)
	case btnHelp:
		return a.handleHelp(c)
	case btnContact:
		return a.handleContact(c)
	default:
		return tghelpers.SendText(c, unknownText)
	}
}

// UnknownText implements ui.FallbackProvider: outside a dialog, unmatched text
// is treated as a menu button press.
func (a *App) UnknownText() tele.HandlerFunc {
	return a.handleMenuText
}

// UnknownDocument implements ui.FallbackProvider.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, documentsText)
	}
}

// UnknownCallback implements ui.FallbackProvider.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: unknownText})
	}
}

func (a *App) handleServiceCallback(c tele.Context) error {
	return a.dispatch(c, dialog.ServiceSelected{ID: callbacks.CallbackPayload(c)})
}

func (a *App) handleConfirmCallback(c tele.Context) error {
	return a.dispatch(c, dialog.Confirm{Yes: callbacks.CallbackPayload(c) == "yes"})
}
