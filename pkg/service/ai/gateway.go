package ai

import (
	"github.com/m-mizutani/gollem"
)

// Gateway translates local state into requests to the external generative
// model and parses responses into typed results. It is a hard boundary:
// every failure is caught here and converted into a fixed fallback value,
// never propagated as an error. There is no retry policy: each failure is
// fallback-and-stop, with the user re-triggering the action manually.
type Gateway struct {
	llm        gollem.LLMClient
	vision     VisionClient
	conditions []string
}

// Option is a functional option for Gateway configuration
type Option func(*Gateway)

// WithConditionCatalog sets the condition names offered to the classifier
// as probability keys.
func WithConditionCatalog(conditions []string) Option {
	return func(g *Gateway) {
		g.conditions = conditions
	}
}

// New creates a Gateway. Either client may be nil: a nil llm makes ChatTurn
// always return the offline fallback, and a nil vision client makes the
// image operations take their respective fallback paths.
func New(llm gollem.LLMClient, vision VisionClient, opts ...Option) *Gateway {
	g := &Gateway{
		llm:    llm,
		vision: vision,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
