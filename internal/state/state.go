// Package state keeps the short-lived "what is this user's next message for" flag.
package state

import (
	"context"
	"time"
)

type Pending string

const (
	None     Pending = ""
	Recipe   Pending = "recipe"
	Question Pending = "question"
	// Forget marks a /forget confirmation that may still be accepted.
	Forget Pending = "forget"
)

// DefaultTTL bounds how long a pending flag waits for the user's reply.
const DefaultTTL = 15 * time.Minute

type Store interface {
	// Set replaces the pending flag of the user.
	Set(ctx context.Context, telegramID int64, p Pending) error
	// Take returns the pending flag and clears it.
	Take(ctx context.Context, telegramID int64) (Pending, error)
}
