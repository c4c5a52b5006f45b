package oracle

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultLocalBaseURL points at a llama.cpp / llama-server style
// OpenAI-compatible endpoint running on the local machine.
const DefaultLocalBaseURL = "http://127.0.0.1:8080/v1"

// LocalProvider implements Provider against any OpenAI-compatible
// chat-completions endpoint. The primary use is a locally hosted model
// (llama.cpp, Ollama, vLLM), so no API key is required by default.
type LocalProvider struct {
	client *openai.Client
	model  string
}

// NewLocalProvider creates a provider for a local OpenAI-compatible server.
//
// Environment variables:
//   - GRADLEMEND_LOCAL_URL: base URL of the endpoint (default DefaultLocalBaseURL)
//   - GRADLEMEND_LOCAL_MODEL: model name to request (default "default")
//   - OPENAI_API_KEY: bearer token, only needed when the endpoint enforces auth
func NewLocalProvider() (*LocalProvider, error) {
	baseURL := os.Getenv("GRADLEMEND_LOCAL_URL")
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}

	model := os.Getenv("GRADLEMEND_LOCAL_MODEL")
	if model == "" {
		model = "default"
	}

	cfg := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	cfg.BaseURL = baseURL

	return &LocalProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Name returns the provider identifier.
func (p *LocalProvider) Name() string {
	return "local"
}

// Complete sends messages to the local endpoint and returns a single response.
func (p *LocalProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("local LLM call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("local LLM returned no choices")
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
