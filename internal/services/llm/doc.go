// Package llm wraps an OpenRouter-style chat-completions API behind
// CompleteJSON/CompleteText with bounded retries. Callers must treat empty or
// invalid model output as a signal to fall back to deterministic templated
// content; the pipeline never blocks on a degenerate model response.
package llm
