package app

import (
	"fmt"

	tghelpers "repairbot/core/telegram/helpers"
	"repairbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// render translates a dialog instruction into Telegram messages. It is the
// only place where engine output meets the transport.
func (a *App) render(c tele.Context, ins dialog.Instruction) error {
	switch v := ins.(type) {
	case dialog.ShowServiceMenu:
		return tghelpers.SendMD(c, chooseServiceText, serviceMenu(v.Services))

	case dialog.Prompt:
		switch v.Kind {
		case dialog.PromptPhone:
			// Service selection arrives as a callback; edit its message in
			// place instead of stacking a new one.
			return tghelpers.EditOrSendMD(c, askPhoneText(v.Selected))
		case dialog.PromptDevice:
			return tghelpers.SendMD(c, askDeviceText)
		case dialog.PromptProblem:
			return tghelpers.SendMD(c, askProblemText)
		default:
			return fmt.Errorf("app: unknown prompt kind %q", v.Kind)
		}

	case dialog.ShowSummary:
		return tghelpers.SendMD(c, summaryText(v.Draft), confirmMenu())

	case dialog.OrderCreated:
		return tghelpers.EditOrSendMD(c, orderCreatedText(v.Order))

	case dialog.OrderCancelled:
		return tghelpers.EditOrSendMD(c, orderCancelledText)

	case dialog.Rejected:
		return tghelpers.SendText(c, rejectionText(v.Reason))

	default:
		return fmt.Errorf("app: unknown instruction %T", ins)
	}
}
