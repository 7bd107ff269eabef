package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const engineCallbackPrefix = "engine:"

// makeEngineKeyboard has one button per configured engine, two per row.
func makeEngineKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(n, engineCallbackPrefix+n))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
