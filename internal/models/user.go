package models

import (
	"time"
)

// User is one Telegram user. Profile fields stay zero until the user sends the profile form.
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	Profile    Profile   `json:"profile"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// HasProfile reports whether the user completed the profile form.
func (u *User) HasProfile() bool {
	return u != nil && u.Profile.Name != ""
}

// DisplayName is the profile name, then the Telegram first name, then a generic greeting.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return "there"
	case u.Profile.Name != "":
		return u.Profile.Name
	case u.FirstName != "":
		return u.FirstName
	default:
		return "there"
	}
}

type Profile struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	Activity string  `json:"activity"`
	Diet     string  `json:"diet"`
	GoalKg   float64 `json:"goal_kg"`
}
