package llm

import "context"

// Completer is the narrow seam the analysis engine consumes. Both methods
// must honor ctx; callers treat any error as "no result" and fall back to
// heuristics.
type Completer interface {
	// Complete returns plain text for the given prompts.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteJSON returns a single JSON object for the given prompts.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Enabled reports whether a provider is configured and ready.
	Enabled() bool
}
