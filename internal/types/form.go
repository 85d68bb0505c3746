// Package types provides type definitions shared by the bio generator packages.
package types

import "strings"

// Vibe is the tone selected on the form.
type Vibe string

// Vibe constants
const (
	VibeProfessional Vibe = "Professional"
	VibeCasual       Vibe = "Casual"
	VibeFunny        Vibe = "Funny"
)

// Vibes lists the selectable vibes in display order.
var Vibes = []Vibe{VibeProfessional, VibeCasual, VibeFunny}

// ParseVibe maps a user supplied value to a Vibe, ignoring case.
// Unknown values are returned as-is so callers can decide how strict to be.
func ParseVibe(s string) Vibe {
	for _, v := range Vibes {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return Vibe(s)
}

// Known reports whether v is one of the selectable vibes.
func (v Vibe) Known() bool {
	for _, known := range Vibes {
		if v == known {
			return true
		}
	}
	return false
}

// Tone returns the descriptor used in the prompt for this vibe.
func (v Vibe) Tone() string {
	switch v {
	case VibeCasual:
		return "relaxed"
	case VibeFunny:
		return "funny"
	default:
		return "professional"
	}
}

// PickLocation is the location placeholder shown before the user picks a country.
const PickLocation = "Pick Location"

// FormState holds the values currently entered on the form.
type FormState struct {
	FreeText string `json:"text"`
	Vibe     Vibe   `json:"vibe"`
	Location string `json:"location"`
}

// DefaultFormState returns the form as first rendered.
func DefaultFormState() FormState {
	return FormState{
		Vibe:     VibeProfessional,
		Location: PickLocation,
	}
}

// LocationSet reports whether a real location has been chosen.
func (f FormState) LocationSet() bool {
	loc := strings.TrimSpace(f.Location)
	return loc != "" && loc != PickLocation
}
