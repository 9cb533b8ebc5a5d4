package app

import (
	tele "gopkg.in/telebot.v4"

	"repairbot/core/telegram/keyboard"
	"repairbot/internal/catalog"
)

// Callback registry keys shared between keyboards and handlers.
const (
	cbService = "service"
	cbConfirm = "confirm"
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnNewOrder, btnMyOrders},
		[]string{btnHelp, btnContact},
	)
}

func serviceMenu(services []catalog.Service) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(services))
	for _, svc := range services {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   svc.DisplayName,
			Unique: cbService,
			Data:   svc.ID,
		})
	}
	return keyboard.InlineButtons(buttons)
}

func confirmMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Confirm", Unique: cbConfirm, Data: "yes"},
		{Text: "❌ Cancel", Unique: cbConfirm, Data: "no"},
	})
}
