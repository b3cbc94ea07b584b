package models

import "time"

type ReminderType string

const (
	ReminderMeal     ReminderType = "meal"
	ReminderWater    ReminderType = "water"
	ReminderExercise ReminderType = "exercise"
)

type Reminder struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	Type         ReminderType `json:"reminder_type"`
	ScheduleTime string       `json:"schedule_time"` // "HH:MM"
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ReminderSlot is a fixed daily reminder: a wall-clock time, a reminder type and the label used in texts.
type ReminderSlot struct {
	Time string
	Type ReminderType
	Kind string
}

// DefaultReminderSlots are enabled together when a user turns reminders on.
var DefaultReminderSlots = []ReminderSlot{
	{Time: "08:00", Type: ReminderMeal, Kind: "breakfast"},
	{Time: "10:00", Type: ReminderWater, Kind: "hydration"},
	{Time: "13:00", Type: ReminderMeal, Kind: "lunch"},
	{Time: "15:00", Type: ReminderWater, Kind: "hydration"},
	{Time: "18:00", Type: ReminderMeal, Kind: "dinner"},
}

// DueReminder is an active reminder joined with the user it belongs to.
type DueReminder struct {
	Reminder
	TelegramID int64
	Name       string
}
