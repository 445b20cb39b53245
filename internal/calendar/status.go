package calendar

import "strings"

// Class is the colour bucket a booking renders with.
type Class string

const (
	ClassConfirmed   Class = "confirmed"
	ClassPencilled   Class = "pencilled"
	ClassCancelled   Class = "cancelled"
	ClassPlaceholder Class = "placeholder"
)

// StatusClass maps a booking status to its class. The placeholder flag wins
// over any status; unknown or empty statuses count as pencilled.
func StatusClass(status string, placeholder bool) Class {
	if placeholder {
		return ClassPlaceholder
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "confirmed":
		return ClassConfirmed
	case "cancelled", "canceled":
		return ClassCancelled
	default:
		// pencilled, penciled, pencil, tentative
		return ClassPencilled
	}
}
