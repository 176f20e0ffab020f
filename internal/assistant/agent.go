// Package assistant answers free-text questions about the loaded
// profile data by delegating SQL generation to a language model.
package assistant

import "context"

// FallbackAnswer is shown when the agent produces no output for a
// question.
const FallbackAnswer = "Sorry, I couldn't find an answer."

// Agent answers one question at a time.
type Agent interface {
	Answer(ctx context.Context, question string) (string, error)
}

// SchemaDescriber exposes the table description the agent reasons
// over, so operators can see what the model sees.
type SchemaDescriber interface {
	SchemaInfo(ctx context.Context) (string, error)
}
