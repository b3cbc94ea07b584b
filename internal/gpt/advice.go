package gpt

import (
	"context"
	"fmt"

	"biteiq-bot/internal/models"

	"github.com/sashabaranov/go-openai"
)

// HistoryTurns is how many stored conversation messages go with a question.
const HistoryTurns = 10

const fallbackTip = "Stay hydrated! Aim to drink at least 8 glasses of water throughout the day."

// GenerateRecipe returns a short recipe with Ingredients, Steps and Tip sections.
func (c *Client) GenerateRecipe(ctx context.Context, mealTitle string, profile *models.Profile) (string, error) {
	profileLine := ""
	if profile != nil && profile.Name != "" {
		profileLine = fmt.Sprintf("User: %s, Age %d, Diet %s. ", profile.Name, profile.Age, profile.Diet)
	}

	prompt := "Write a short healthy recipe with EXACTLY these sections and labels:\n" +
		"Ingredients:\n" +
		"Steps:\n" +
		"Tip:\n" +
		"Under 120 words total. No extra commentary.\n" +
		profileLine + "Meal: " + mealTitle

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, 350, 0.55, nil)
}

// Answer replies to a nutrition question, using up to HistoryTurns earlier messages as context.
func (c *Client) Answer(ctx context.Context, profile *models.Profile, history []models.ChatMessage, question string) (string, error) {
	system := "You are a concise nutrition coach. Answer in <= 60 words. " +
		"Only respond to nutrition/meal related questions."
	if profile != nil && profile.Name != "" {
		system += " PROFILE: " + describeProfile(*profile) + "."
	}

	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question})

	return c.complete(ctx, messages, 160, 0.5, nil)
}

// QuickTip never fails; API errors yield a stock tip.
func (c *Client) QuickTip(ctx context.Context) string {
	tip, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Give me one quick, actionable nutrition or health tip. Keep it under 50 words."},
	}, 100, 0.9, nil)
	if err != nil || tip == "" {
		return fallbackTip
	}
	return tip
}
