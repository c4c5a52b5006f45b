// Package oracle consults an LLM for Gradle build fix proposals and
// parses its responses into structured edits.
//
// The package separates three concerns:
//   - Provider: single-turn completion against one LLM backend
//     (Claude, Gemini, or a local OpenAI-compatible server).
//   - Factory: provider selection with per-provider circuit breakers.
//   - Client: prompt construction, the call timeout, and response
//     parsing into a FixProposal.
package oracle

import "context"

// Provider defines the interface for single-turn LLM completion.
// Each implementation converts between these common types and its
// SDK-specific formats. Providers are stateless; callers own the
// conversation, which for fix proposals is a single turn.
type Provider interface {
	// Name returns the provider identifier (e.g., "claude", "gemini", "local").
	Name() string

	// Complete sends messages to the LLM and returns a single response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest contains input for a single LLM turn.
type CompletionRequest struct {
	// SystemPrompt provides context and instructions for the LLM.
	SystemPrompt string

	// Messages contains the conversation history.
	// Must include at least one user message.
	Messages []Message

	// MaxTokens limits the response length.
	// If zero, providers use their default limits.
	MaxTokens int

	// Temperature controls sampling randomness.
	// If zero, providers use their default.
	Temperature float32
}

// CompletionResponse contains the LLM's response for a single turn.
type CompletionResponse struct {
	// Content is the text response from the LLM.
	Content string

	// StopReason indicates why the LLM stopped generating.
	// Common values: "end_turn", "stop", "max_tokens".
	StopReason string

	// Usage tracks token consumption for this turn.
	Usage Usage
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the sender of a message in a conversation.
type Role string

const (
	// RoleUser indicates a message from the user or application.
	RoleUser Role = "user"

	// RoleAssistant indicates a message from the LLM.
	RoleAssistant Role = "assistant"
)

// Usage tracks token consumption across oracle calls.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add accumulates usage from another Usage into this one.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
