package domain

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MinGamingUsernameLen is the shortest in-game name the booking flow accepts.
const MinGamingUsernameLen = 3

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrValidation("email is required")
	}
	if !emailRegex.MatchString(email) {
		return ErrValidation("invalid email format")
	}
	return nil
}

// ValidatePositiveAmount rejects zero and negative amounts.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return ErrValidation("amount must be positive")
	}
	return nil
}

// ValidateAmountBounds rejects amounts outside the configured [min, max] window.
func ValidateAmountBounds(amount, min, max int64) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if amount < min || amount > max {
		return ErrValidation(fmt.Sprintf("amount must be between %d and %d", min, max))
	}
	return nil
}

// ValidateGamingUsername enforces the minimum in-game name length.
func ValidateGamingUsername(name string) error {
	if utf8.RuneCountInString(name) < MinGamingUsernameLen {
		return ErrValidation(fmt.Sprintf("gaming username must be at least %d characters", MinGamingUsernameLen))
	}
	return nil
}

// ValidateSlotNumber checks that n addresses a seat in the fixed slot table.
func ValidateSlotNumber(n, maxParticipants int) error {
	if n < 1 || n > maxParticipants {
		return ErrValidation(fmt.Sprintf("slot number must be between 1 and %d", maxParticipants))
	}
	return nil
}

// ValidateRankedList checks a settlement podium: 3 entries, positions 1..3
// each exactly once, no duplicate users.
func ValidateRankedList(entries []RankedEntry) error {
	if len(entries) != 3 {
		return ErrValidation("ranked list must contain exactly 3 entries")
	}
	seenPos := map[int]bool{}
	seenUser := map[string]bool{}
	for _, e := range entries {
		if e.Position < 1 || e.Position > 3 {
			return ErrValidation("positions must be 1, 2 and 3")
		}
		if seenPos[e.Position] {
			return ErrValidation(fmt.Sprintf("duplicate position %d", e.Position))
		}
		seenPos[e.Position] = true
		if seenUser[e.UserID.String()] {
			return ErrValidation("duplicate user in ranked list")
		}
		seenUser[e.UserID.String()] = true
		if e.Kills < 0 {
			return ErrValidation("kills must be non-negative")
		}
	}
	return nil
}
