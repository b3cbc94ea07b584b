package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSubscriptionGrantsAccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, false},
		{"active no end", &Subscription{Status: SubscriptionActive}, true},
		{"trialing future", &Subscription{Status: SubscriptionTrialing, CurrentPeriodEnd: &future}, true},
		{"active past", &Subscription{Status: SubscriptionActive, CurrentPeriodEnd: &past}, false},
		{"active ends now", &Subscription{Status: SubscriptionActive, CurrentPeriodEnd: &now}, false},
		{"expired", &Subscription{Status: SubscriptionExpired}, false},
		{"cancelled future", &Subscription{Status: SubscriptionCancelled, CurrentPeriodEnd: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.GrantsAccess(now); got != tt.want {
				t.Errorf("GrantsAccess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionStatusValid(t *testing.T) {
	for _, s := range []SubscriptionStatus{"active", "trialing", "expired", "cancelled", "inactive"} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []SubscriptionStatus{"canceled", "past_due", ""} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestUserDisplayName(t *testing.T) {
	var nilUser *User
	if nilUser.DisplayName() != "there" || nilUser.HasProfile() {
		t.Fatal("nil user")
	}
	u := &User{FirstName: "Ann"}
	if u.DisplayName() != "Ann" || u.HasProfile() {
		t.Fatalf("first name fallback: %q", u.DisplayName())
	}
	u.Profile.Name = "Annie"
	if u.DisplayName() != "Annie" || !u.HasProfile() {
		t.Fatalf("profile name: %q", u.DisplayName())
	}
}

func TestMealPlanTitles(t *testing.T) {
	p := MealPlan{Meals: []Meal{{Title: "Oats"}, {Title: ""}, {Title: "Soup"}}}
	got := p.Titles()
	if len(got) != 2 || got[0] != "Oats" || got[1] != "Soup" {
		t.Fatalf("Titles = %v", got)
	}
}

func TestMealPlanLooseCalories(t *testing.T) {
	raw := `{"meals":[
		{"meal":"Breakfast","title":"Oats","calories":"350"},
		{"meal":"Lunch","title":"Soup","calories":420.5},
		{"meal":"Dinner","title":"Fish","calories":" 610 kcal"},
		{"meal":"Snack","title":"Apple","calories":true}
	],"total_calories":"1380.4","tip":"Walk."}`

	var plan MealPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := []int{350, 421, 610, 0}
	for i, m := range plan.Meals {
		if m.Calories != want[i] {
			t.Errorf("%s calories = %d, want %d", m.Title, m.Calories, want[i])
		}
	}
	if plan.Meals[2].Meal != "Dinner" || plan.Tip != "Walk." {
		t.Errorf("other fields lost: %+v", plan)
	}
	if plan.TotalCalories != 1380 {
		t.Errorf("total = %d", plan.TotalCalories)
	}

	b, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var again MealPlan
	if err := json.Unmarshal(b, &again); err != nil || again.TotalCalories != 1380 || again.Meals[1].Calories != 421 {
		t.Errorf("stored plan did not decode back: %+v, %v", again, err)
	}
}
