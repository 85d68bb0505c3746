package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Bio is one generated biography, numbered from 1 in extraction order.
type Bio struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Generation is a completed generation as recorded in history.
type Generation struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Vibe      Vibe      `json:"vibe"`
	Location  string    `json:"location"`
	Bios      []Bio     `json:"bios"`
	Degraded  bool      `json:"degraded"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateRequest is the body accepted by the JSON API and the form handler.
type GenerateRequest struct {
	Text     string `json:"text" validate:"max=1000"`
	Vibe     string `json:"vibe" validate:"omitempty,vibe"`
	Location string `json:"location" validate:"max=100"`
}

// GenerateResponse is returned by the JSON API.
type GenerateResponse struct {
	ID         string      `json:"id"`
	Bios       []Bio       `json:"bios"`
	Prompt     string      `json:"prompt,omitempty"`
	Degraded   bool        `json:"degraded"`
	Warning    string      `json:"warning,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// OptionsResponse lists the selectable countries and vibes.
type OptionsResponse struct {
	Countries []CountryOption `json:"countries"`
	Vibes     []Vibe          `json:"vibes"`
}

// CountryOption is a country as offered in the location dropdown.
type CountryOption struct {
	Name  string `json:"name"`
	Flag  string `json:"flag"`
	Label string `json:"label"`
}

// StatsResponse reports how many bios have been generated so far.
type StatsResponse struct {
	Generated int64 `json:"generated"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("vibe", func(fl validator.FieldLevel) bool {
		return ParseVibe(fl.Field().String()).Known()
	})
	return v
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// FormState converts the request into form state, applying form defaults
// for fields the caller left empty.
func (r *GenerateRequest) FormState() FormState {
	state := DefaultFormState()
	state.FreeText = r.Text
	if r.Vibe != "" {
		state.Vibe = ParseVibe(r.Vibe)
	}
	if r.Location != "" {
		state.Location = r.Location
	}
	return state
}
