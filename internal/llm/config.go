// Package llm provides the LLM configuration and client abstraction used to
// request bio completions.
package llm

import "fmt"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// GenerationParams are the sampling parameters sent with every request.
type GenerationParams struct {
	Temperature     float32
	MaxOutputTokens int32
	TopP            float32
}

// Config holds the model configuration for the application
type Config struct {
	Provider   Provider
	Model      string
	Generation GenerationParams
}

// DefaultConfig returns the default Gemini configuration: deterministic
// decoding, a 400 token cap and the full probability mass retained.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultModel,
		Generation: GenerationParams{
			Temperature:     0,
			MaxOutputTokens: 400,
			TopP:            1.0,
		},
	}
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}

// Validate checks the generation parameters are within the ranges Gemini accepts.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm config: model is required")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("llm config: temperature must be within [0, 2], got %v", c.Generation.Temperature)
	}
	if c.Generation.TopP < 0 || c.Generation.TopP > 1 {
		return fmt.Errorf("llm config: top_p must be within [0, 1], got %v", c.Generation.TopP)
	}
	if c.Generation.MaxOutputTokens <= 0 {
		return fmt.Errorf("llm config: max_output_tokens must be positive")
	}
	return nil
}
