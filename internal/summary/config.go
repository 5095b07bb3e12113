package summary

import "time"

// Config selects an OpenAI-compatible chat completion endpoint.
type Config struct {
	// APIKey authenticates against the provider. Empty disables summaries.
	APIKey string
	// BaseURL overrides the OpenAI endpoint, e.g. Gemini's OpenAI-compatible API.
	BaseURL string
	// Model is the chat model name.
	Model string
	// MaxTokens caps the length of the answer.
	MaxTokens int
	// Timeout bounds one provider call.
	Timeout time.Duration
	// MaxRows caps how many rows are embedded in the prompt.
	MaxRows int
}

// DefaultConfig targets Gemini through its OpenAI-compatible endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://generativelanguage.googleapis.com/v1beta/openai/",
		Model:     "gemini-2.0-flash",
		MaxTokens: 1024,
		Timeout:   30 * time.Second,
		MaxRows:   500,
	}
}
