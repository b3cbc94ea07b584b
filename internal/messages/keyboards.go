package messages

import (
	"strings"
	"unicode/utf8"

	"biteiq-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data sent by inline buttons.
const (
	CallbackRemindersOn  = "rem_start"
	CallbackRemindersOff = "rem_stop"
	CallbackTomorrow     = "menu_tomorrow"
	CallbackAskRecipe    = "req_recipe"
	CallbackRecipePrefix = "recipe|"
	CallbackAskQuestion  = "ask_q"
	CallbackSubscribe    = "subscribe"
	CallbackManage       = "manage_sub"
	CallbackForgetYes    = "forget_yes"
	CallbackForgetNo     = "forget_no"
)

// maxCallbackData is Telegram's limit on callback_data, in bytes.
const maxCallbackData = 64

func MenuKeyboard(remindersOn, subscribed bool) tgbotapi.InlineKeyboardMarkup {
	reminders := tgbotapi.NewInlineKeyboardButtonData("🔔 Activate reminders", CallbackRemindersOn)
	if remindersOn {
		reminders = tgbotapi.NewInlineKeyboardButtonData("🔕 Stop reminders", CallbackRemindersOff)
	}
	billing := tgbotapi.NewInlineKeyboardButtonData("💳 Subscribe", CallbackSubscribe)
	if subscribed {
		billing = tgbotapi.NewInlineKeyboardButtonData("💳 Manage subscription", CallbackManage)
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🍽️ Tomorrow's Plan", CallbackTomorrow)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("👩‍🍳 Get a Recipe", CallbackAskRecipe)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❓ Ask a question", CallbackAskQuestion)),
		tgbotapi.NewInlineKeyboardRow(reminders),
		tgbotapi.NewInlineKeyboardRow(billing),
	)
}

// RecipeKeyboard offers one recipe button per main meal of the plan.
func RecipeKeyboard(meals []models.Meal) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range meals {
		if m.Meal != "Breakfast" && m.Meal != "Lunch" && m.Meal != "Dinner" {
			continue
		}
		title := m.Title
		if title == "" {
			title = m.Meal
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(MealEmoji(m.Meal)+" "+m.Meal+" Recipe", RecipeCallback(title)),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👩‍🍳 Get a Recipe", CallbackAskRecipe),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RecipeCallback builds "recipe|<title>", cutting the title on a rune boundary to fit 64 bytes.
func RecipeCallback(title string) string {
	data := CallbackRecipePrefix + strings.TrimSpace(title)
	for len(data) > maxCallbackData {
		_, size := utf8.DecodeLastRuneInString(data)
		data = data[:len(data)-size]
	}
	return data
}

func RemindersKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Yes, meal & hydration reminders", CallbackRemindersOn)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ No thanks", CallbackRemindersOff)),
	)
}

func ForgetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete everything", CallbackForgetYes),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Keep my data", CallbackForgetNo),
		),
	)
}
