package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

type Meal struct {
	Meal        string `json:"meal"` // Breakfast, Lunch, Dinner or Snack
	Title       string `json:"title"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
}

// UnmarshalJSON accepts calories as an integer, a float or a numeric string ("350 kcal").
func (m *Meal) UnmarshalJSON(b []byte) error {
	type meal Meal
	var aux struct {
		meal
		Calories json.RawMessage `json:"calories"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = Meal(aux.meal)
	m.Calories = looseInt(aux.Calories)
	return nil
}

type MealPlan struct {
	Meals         []Meal `json:"meals"`
	TotalCalories int    `json:"total_calories"`
	Tip           string `json:"tip"`
}

func (p *MealPlan) UnmarshalJSON(b []byte) error {
	type plan MealPlan
	var aux struct {
		plan
		TotalCalories json.RawMessage `json:"total_calories"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = MealPlan(aux.plan)
	p.TotalCalories = looseInt(aux.TotalCalories)
	return nil
}

// looseInt reads a JSON number or a string starting with one, rounded. Anything else is 0.
func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(math.Round(n))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if end >= 0 {
		s = s[:end]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f))
}

// Titles returns the non-empty meal titles of the plan.
func (p MealPlan) Titles() []string {
	titles := make([]string, 0, len(p.Meals))
	for _, m := range p.Meals {
		if m.Title != "" {
			titles = append(titles, m.Title)
		}
	}
	return titles
}

type Plan struct {
	UserID    int64     `json:"user_id"`
	PlanDate  time.Time `json:"plan_date"`
	Plan      MealPlan  `json:"plan_json"`
	CreatedAt time.Time `json:"created_at"`
}
