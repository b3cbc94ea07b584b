package messages

import (
	"strings"
	"testing"
	"unicode/utf8"

	"biteiq-bot/internal/models"
)

func TestRecipeCallbackFitsTelegramLimit(t *testing.T) {
	if got := RecipeCallback(" Oats "); got != "recipe|Oats" {
		t.Errorf("short title = %q", got)
	}

	long := strings.Repeat("Жареный лосось ", 10)
	got := RecipeCallback(long)
	if len(got) > 64 {
		t.Fatalf("callback is %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("callback cut inside a rune: %q", got)
	}
	if !strings.HasPrefix(got, "recipe|Жареный") {
		t.Errorf("callback = %q", got)
	}
}

func TestRecipeKeyboard(t *testing.T) {
	kb := RecipeKeyboard([]models.Meal{
		{Meal: "Breakfast", Title: "Oats"},
		{Meal: "Snack", Title: "Apple"},
		{Meal: "Dinner"},
	})
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(kb.InlineKeyboard))
	}
	if d := *kb.InlineKeyboard[0][0].CallbackData; d != "recipe|Oats" {
		t.Errorf("first callback = %q", d)
	}
	if d := *kb.InlineKeyboard[1][0].CallbackData; d != "recipe|Dinner" {
		t.Errorf("untitled meal callback = %q", d)
	}

	kb = RecipeKeyboard(nil)
	if d := *kb.InlineKeyboard[0][0].CallbackData; d != CallbackAskRecipe {
		t.Errorf("empty plan callback = %q", d)
	}
}

func TestMenuKeyboardToggles(t *testing.T) {
	kb := MenuKeyboard(false, false)
	if *kb.InlineKeyboard[3][0].CallbackData != CallbackRemindersOn || *kb.InlineKeyboard[4][0].CallbackData != CallbackSubscribe {
		t.Error("off/unsubscribed menu has wrong buttons")
	}
	kb = MenuKeyboard(true, true)
	if *kb.InlineKeyboard[3][0].CallbackData != CallbackRemindersOff || *kb.InlineKeyboard[4][0].CallbackData != CallbackManage {
		t.Error("on/subscribed menu has wrong buttons")
	}
}
