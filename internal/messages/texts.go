package messages

import (
	"fmt"
	"strings"

	"biteiq-bot/internal/models"
)

const (
	Help = "*What I do:*\n" +
		"\\- Generate daily personalized meal plans\n" +
		"\\- Send simple reminders \\(meals \\+ hydration\\)\n" +
		"\\- Provide minimal, recipe\\-style answers\n\n" +
		"*Quick commands:*\n" +
		"/menu – open menu\n" +
		"/tomorrow – get tomorrow's plan\n" +
		"/subscribe – unlock premium features\n" +
		"/forget – delete all your data"

	MenuTitle         = "📋 *Menu*"
	MenuHint          = "📋 Type /menu anytime to open your main options\\."
	ProfileFirst      = "Please set up your profile first with /start\\."
	OnlyDiet          = "💬 I'm your nutrition coach and answer only diet \\& meal questions\\.\nSend your profile \\(8 details\\) to get started\\."
	GenericError      = "⚠️ Sorry, something went wrong\\. Please try again later\\."
	CheckoutError     = "❌ Sorry, there was an error creating your checkout session\\. Please try again later\\."
	PortalError       = "❌ Error creating portal session\\."
	NoSubscription    = "No active subscription found\\."
	RemindersOn       = "🔔 Reminders ON: %s\\."
	RemindersOff      = "🔕 Reminders OFF\\. You'll still receive the daily 06:00 plan\\."
	RemindersPrompt   = "🔔 Enable day reminders?"
	AskRecipe         = "👩‍🍳 Type the meal name you'd like a recipe for\\."
	AskQuestion       = "❓ Send your nutrition question \\(short\\)\\."
	ForgetConfirm     = "🗑 This deletes your profile, plans, reminders and subscription record\\. Continue?"
	ForgetDone        = "🗑 All your data has been deleted\\. Send /start to begin again\\."
	ForgetCancelled   = "👍 Nothing was deleted\\."
	ForgetExpired     = "⌛ That confirmation has expired\\. Send /forget again to delete your data\\."
	ProfileInvalid    = "⚠️ Some values look off: %s\\. Please send all 8 details again\\."
	PlanTitleToday    = "Your Personalized Meal Plan"
	PlanTitleDaily    = "Your Fresh Daily Plan"
	PlanTitleTomorrow = "Your Plan for Tomorrow"
)

// Welcome is the /start greeting explaining the profile format.
func Welcome(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return "👋 *Welcome to BiteIQBot*, " + Escape(firstName) + ", your smart nutrition coach\\! 🥗\n\n" +
		"To personalize your plan, please send the following 8 details \\(each on a new line or separated by commas\\):\n\n" +
		"1️⃣ Name\n" +
		"2️⃣ Age\n" +
		"3️⃣ Gender \\(M/F\\)\n" +
		"4️⃣ Height \\(cm\\)\n" +
		"5️⃣ Weight \\(kg\\)\n" +
		"6️⃣ Activity level \\(low / medium / high\\)\n" +
		"7️⃣ Dietary restrictions \\(or 'none'\\)\n" +
		"8️⃣ Goal weight \\(kg\\)\n\n" +
		"📅 Your daily plan will be automatically sent at 06:00\\."
}

// Locked is the reply to a premium action without an active subscription, e.g. Locked("get recipes").
func Locked(action string) string {
	return "🔒 Please /subscribe to " + Escape(action) + "\\."
}

func Preparing(name string) string {
	return Escape("🔥 Great, " + name + "! Preparing your personalized plan…")
}

func CheckoutLink(url string) string {
	return "💳 Subscribe here:\n" + Escape(url)
}

func PortalLink(url string) string {
	return "🔧 Manage your subscription:\n" + Escape(url)
}

func RemindersEnabled(slots []models.ReminderSlot) string {
	times := make([]string, 0, len(slots))
	seen := map[string]bool{}
	for _, s := range slots {
		if !seen[s.Time] {
			seen[s.Time] = true
			times = append(times, s.Time)
		}
	}
	return fmt.Sprintf(RemindersOn, Escape(strings.Join(times, ", ")))
}

func InvalidProfile(problems []string) string {
	return fmt.Sprintf(ProfileInvalid, Escape(strings.Join(problems, "; ")))
}

// SubscriptionUpdate tells the user what a billing change means for them.
func SubscriptionUpdate(status models.SubscriptionStatus) string {
	switch status {
	case models.SubscriptionActive, models.SubscriptionTrialing:
		return "✅ *Subscription active\\!* Tomorrow's plans, recipes and coach questions are unlocked\\. Open /menu to start\\."
	case models.SubscriptionCancelled:
		return "ℹ️ Your subscription has been cancelled\\. You can /subscribe again anytime\\."
	default:
		return "ℹ️ Your subscription status changed to " + Escape(string(status)) + "\\."
	}
}

// Answer escapes a model answer for sending.
func Answer(text string) string {
	return Escape(strings.TrimSpace(text))
}
