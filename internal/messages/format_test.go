package messages

import (
	"strings"
	"testing"

	"biteiq-bot/internal/models"
)

func TestEscape(t *testing.T) {
	got := Escape("Salmon & Quinoa (v2). Done!")
	want := `Salmon & Quinoa \(v2\)\. Done\!`
	if got != want {
		t.Errorf("Escape = %q, want %q", got, want)
	}
}

func TestFormatPlan(t *testing.T) {
	plan := models.MealPlan{
		Meals: []models.Meal{
			{Meal: "Breakfast", Title: "Greek Yogurt Bowl", Description: "Yogurt, berries, nuts.", Calories: 380},
			{Meal: "Brunch", Title: "Eggs_Benedict", Calories: 450},
		},
		TotalCalories: 830,
		Tip:           "Drink water before meals.",
	}

	got := FormatPlan(PlanTitleTomorrow, "Ann-Marie", plan)

	for _, want := range []string{
		"🥗 *Your Plan for Tomorrow* – *Ann\\-Marie*",
		"🍳 *Breakfast*: Greek Yogurt Bowl",
		"_Yogurt, berries, nuts\\._",
		"🔥 *380 kcal*",
		"🍴 *Brunch*: Eggs\\_Benedict",
		"📊 *Total:* 830 kcal",
		"💡 *Tip:* Drink water before meals\\.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plan text missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "__") {
		t.Errorf("empty description rendered:\n%s", got)
	}
}

func TestFormatRecipe(t *testing.T) {
	got := FormatRecipe("Oats (quick)", "**Ingredients:**\n- oats\nSteps:\n1. Boil.")
	if !strings.HasPrefix(got, "👩‍🍳 *Recipe for Oats \\(quick\\)*") {
		t.Errorf("header = %q", got)
	}
	if strings.Contains(got, "**") {
		t.Errorf("bold markers kept: %q", got)
	}
	if !strings.Contains(got, "Ingredients:\n\\- oats\nSteps:\n1\\. Boil\\.") {
		t.Errorf("body not escaped once: %q", got)
	}
}

func TestReminderText(t *testing.T) {
	tests := map[string]string{
		"breakfast": "🥣 Good morning, Ann\\! Time for breakfast\\.",
		"hydration": "💧 Quick hydration check, Ann\\! Take a moment to drink water\\.",
		"lunch":     "🍱 Lunchtime, Ann\\! Refuel smart\\.",
		"dinner":    "🌇 Dinner time, Ann\\! Keep it light\\.",
		"other":     "🔔 Hey Ann, gentle reminder to eat mindfully\\.",
	}
	for kind, want := range tests {
		if got := ReminderText(kind, "Ann"); got != want {
			t.Errorf("ReminderText(%s) = %q, want %q", kind, got, want)
		}
	}
	if got := ReminderText("lunch", ""); !strings.Contains(got, "there") {
		t.Errorf("empty name: %q", got)
	}
}

func TestRemindersEnabledListsDistinctTimes(t *testing.T) {
	got := RemindersEnabled(models.DefaultReminderSlots)
	want := "🔔 Reminders ON: 08:00, 10:00, 13:00, 15:00, 18:00\\."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLockedAndLinks(t *testing.T) {
	if got := Locked("get recipes"); got != "🔒 Please /subscribe to get recipes\\." {
		t.Errorf("Locked = %q", got)
	}
	if got := CheckoutLink("https://checkout.stripe.com/c/pay_1#x"); !strings.Contains(got, "https://checkout\\.stripe\\.com/c/pay\\_1\\#x") {
		t.Errorf("CheckoutLink = %q", got)
	}
}
