// Package bios turns form input into a Gemini prompt and the completion back
// into individual Twitter bios.
package bios

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/bio-generator/internal/catalog"
	"github.com/jonathan/bio-generator/internal/prompts"
	"github.com/jonathan/bio-generator/internal/types"
)

const (
	// BioCount is the number of bios requested per generation.
	BioCount = 3
	// MaxBioChars is the per-bio length bound given to the model.
	MaxBioChars = 300

	promptFile = "bios.json"
)

// BuildPrompt renders the generation prompt for state. It is deterministic.
//
// Location and free-text are not validated: an unset location is embedded
// literally, as is empty free-text. It panics if the embedded template uses
// a placeholder that is not filled here.
func BuildPrompt(state types.FormState) string {
	humor := ""
	if state.Vibe == types.VibeFunny {
		humor = prompts.MustGet(promptFile, "humor-instruction")
	}

	prompt, err := prompts.Render(prompts.MustGet(promptFile, "generate-bios"), map[string]string{
		"Tone":     state.Vibe.Tone(),
		"MaxChars": strconv.Itoa(MaxBioChars),
		"Location": locationLabel(state.Location),
		"Humor":    humor,
		"Context":  withPeriod(state.FreeText),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to render prompt: %v", err))
	}
	return prompt
}

// withPeriod appends a period unless text already ends with one.
func withPeriod(text string) string {
	if strings.HasSuffix(text, ".") {
		return text
	}
	return text + "."
}

func locationLabel(location string) string {
	if c, ok := catalog.Lookup(location); ok {
		return c.Label()
	}
	return location
}
