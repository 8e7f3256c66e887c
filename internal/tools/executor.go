package tools

import (
	"context"
	"fmt"
	"strings"
)

// Executor runs parsed tool calls against a registry and formats the
// results for feeding back into the conversation.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Registry returns the underlying tool registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// ExecuteCalls runs each call in order. Failures do not stop the batch.
func (e *Executor) ExecuteCalls(ctx context.Context, calls []Call) []Result {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		results = append(results, e.registry.Execute(ctx, call.Tool, call.Params))
	}
	return results
}

// FormatResults renders results as text for the model and the user.
func (e *Executor) FormatResults(results []Result) string {
	var sb strings.Builder
	sb.WriteString("Tool results:\n")

	for _, res := range results {
		fmt.Fprintf(&sb, "\n[%s]\n", res.Tool)
		if res.Success {
			sb.WriteString(res.Output)
		} else {
			fmt.Fprintf(&sb, "error: %s", res.Error)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
