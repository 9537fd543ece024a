// Package llm provides the provider contract and generation options.
package llm

import "github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"

// GenerateOptions holds parameters for LLM generation.
// Zero values mean "provider default".
type GenerateOptions struct {
	// Temperature controls randomness in responses (0.0 = deterministic, 1.0 = random)
	Temperature float64

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateOption is a functional option for configuring GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the temperature for generation.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens sets the maximum tokens for generation.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// OptionsFromModel builds options from a model definition in config.yaml.
func OptionsFromModel(def config.ModelDef) []GenerateOption {
	var opts []GenerateOption
	if def.Temperature != 0 {
		opts = append(opts, WithTemperature(def.Temperature))
	}
	if def.MaxTokens > 0 {
		opts = append(opts, WithMaxTokens(def.MaxTokens))
	}
	return opts
}

// Apply folds opts into a GenerateOptions value.
func Apply(opts ...GenerateOption) GenerateOptions {
	var o GenerateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
