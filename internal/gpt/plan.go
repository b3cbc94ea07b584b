package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"biteiq-bot/internal/models"

	"github.com/sashabaranov/go-openai"
)

var codeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*|\\s*```$")

// FallbackPlan is served when the model reply cannot be used.
func FallbackPlan() models.MealPlan {
	return models.MealPlan{
		Meals: []models.Meal{
			{Meal: "Breakfast", Title: "Greek Yogurt Bowl", Description: "Yogurt, berries, nuts.", Calories: 380},
			{Meal: "Lunch", Title: "Chicken Salad", Description: "Chicken, greens, olive oil.", Calories: 500},
			{Meal: "Dinner", Title: "Salmon & Quinoa", Description: "Salmon, quinoa, veg.", Calories: 620},
		},
		TotalCalories: 1500,
		Tip:           "Drink water before meals.",
	}
}

// GeneratePlan asks for a one-day plan as JSON. dayLabel is "today" or "tomorrow"; avoid lists
// recently served titles. A reply without meals yields FallbackPlan.
func (c *Client) GeneratePlan(ctx context.Context, profile models.Profile, dayLabel string, avoid []string) (models.MealPlan, error) {
	var extra []string
	if strings.EqualFold(dayLabel, "tomorrow") {
		extra = append(extra, "Make tomorrow's plan different from today's meals while keeping nutrition similar.")
	}
	if len(avoid) > 0 {
		extra = append(extra, "Avoid these recent meals: "+strings.Join(avoid, ", ")+".")
	}

	prompt := "You are a concise nutrition coach. Return ONLY valid JSON, no markdown. " +
		"Keys: meals(list), total_calories(int), tip(string). " +
		"Each meal item: meal('Breakfast'/'Lunch'/'Dinner' or 'Snack'), title, description, calories(int). " +
		"Keep descriptions short (<20 words). " +
		fmt.Sprintf("PROFILE: %s. DAY: %s. Include Breakfast, Lunch, Dinner (one Snack optional). %s",
			describeProfile(profile), dayLabel, strings.Join(extra, " "))

	raw, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: strings.TrimSpace(prompt)},
	}, 600, 0.6, &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject})
	if err != nil {
		return models.MealPlan{}, err
	}

	return ParsePlan(raw), nil
}

// ParsePlan decodes a model reply, tolerating markdown code fences.
func ParsePlan(raw string) models.MealPlan {
	raw = codeFence.ReplaceAllString(strings.TrimSpace(raw), "")

	var plan models.MealPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil || len(plan.Meals) == 0 {
		return FallbackPlan()
	}

	if plan.TotalCalories == 0 {
		for _, m := range plan.Meals {
			plan.TotalCalories += m.Calories
		}
	}
	return plan
}

func describeProfile(p models.Profile) string {
	return fmt.Sprintf("name=%s, age=%d, gender=%s, height_cm=%g, weight_kg=%g, activity=%s, diet=%s, goal_kg=%g",
		p.Name, p.Age, p.Gender, p.HeightCm, p.WeightKg, p.Activity, p.Diet, p.GoalKg)
}
