// Package messages renders the MarkdownV2 texts sent to Telegram users.
// Dynamic values are escaped exactly once, here.
package messages

import (
	"fmt"
	"strings"

	"biteiq-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const ParseMode = tgbotapi.ModeMarkdownV2

const divider = "━━━━━━━━━━━━━━━"

var mealEmoji = map[string]string{
	"Breakfast": "🍳",
	"Lunch":     "🥗",
	"Dinner":    "🍽️",
	"Snack":     "🥤",
}

func Escape(s string) string {
	return tgbotapi.EscapeText(ParseMode, s)
}

func Bold(s string) string {
	return "*" + Escape(s) + "*"
}

func MealEmoji(meal string) string {
	if e, ok := mealEmoji[meal]; ok {
		return e
	}
	return "🍴"
}

// FormatPlan renders a meal plan under a heading such as "Your Plan for Tomorrow".
func FormatPlan(title, name string, plan models.MealPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🥗 %s – %s\n%s\n", Bold(title), Bold(name), divider)

	for _, m := range plan.Meals {
		meal := m.Meal
		if meal == "" {
			meal = "Meal"
		}
		fmt.Fprintf(&b, "\n%s %s: %s\n", MealEmoji(meal), Bold(meal), Escape(m.Title))
		if m.Description != "" {
			fmt.Fprintf(&b, "_%s_\n", Escape(m.Description))
		}
		fmt.Fprintf(&b, "🔥 *%d kcal*\n", m.Calories)
	}

	b.WriteString("\n" + divider)
	if plan.TotalCalories > 0 {
		fmt.Fprintf(&b, "\n📊 *Total:* %d kcal", plan.TotalCalories)
	}
	if plan.Tip != "" {
		fmt.Fprintf(&b, "\n💡 *Tip:* %s", Escape(plan.Tip))
	}
	return b.String()
}

// FormatRecipe wraps model-written recipe text. Markdown emphasis in content is flattened.
func FormatRecipe(title, content string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "**", ""))
	return strings.Join([]string{
		"👩‍🍳 *Recipe for " + Escape(title) + "*",
		divider,
		Escape(content),
		divider,
	}, "\n")
}

// ReminderText is the scheduled nudge for a reminder slot kind (breakfast, hydration, lunch, dinner).
func ReminderText(kind, name string) string {
	if name == "" {
		name = "there"
	}
	switch kind {
	case "breakfast":
		return "🥣 " + Escape("Good morning, "+name+"!") + " Time for breakfast\\."
	case "hydration":
		return "💧 " + Escape("Quick hydration check, "+name+"!") + " Take a moment to drink water\\."
	case "lunch":
		return "🍱 " + Escape("Lunchtime, "+name+"!") + " Refuel smart\\."
	case "dinner":
		return "🌇 " + Escape("Dinner time, "+name+"!") + " Keep it light\\."
	default:
		return "🔔 " + Escape("Hey "+name+", gentle reminder to eat mindfully.")
	}
}

// WithTip appends a short coaching tip under a message.
func WithTip(text, tip string) string {
	tip = strings.TrimSpace(tip)
	if tip == "" {
		return text
	}
	return text + "\n\n💡 " + Escape(tip)
}
