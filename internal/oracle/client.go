package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gradlemend/gradlemend/internal/log"
)

// DefaultCallTimeout bounds a single oracle consultation.
const DefaultCallTimeout = 2 * time.Minute

// DefaultMaxTokens limits proposal length. Fix proposals are short;
// a few hundred tokens of content plus the tagged scaffolding.
const DefaultMaxTokens = 2048

// ErrTimeout indicates the oracle did not answer within the call timeout.
var ErrTimeout = errors.New("oracle call timed out")

// Client consults an oracle provider for fix proposals.
// The caller constructs and owns the Client; nothing in this package
// holds process-global oracle state.
type Client struct {
	factory     *Factory
	timeout     time.Duration
	maxTokens   int
	temperature float32
	logger      log.Logger

	// usage accumulates token consumption across Propose calls.
	usage Usage
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithClientLogger sets a logger for client messages.
func WithClientLogger(logger log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client on top of a provider factory.
func NewClient(factory *Factory, opts ...ClientOption) *Client {
	c := &Client{
		factory:   factory,
		timeout:   DefaultCallTimeout,
		maxTokens: DefaultMaxTokens,
		logger:    log.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Usage returns the accumulated token usage across all Propose calls.
func (c *Client) Usage() Usage {
	return c.usage
}

// Propose asks the oracle for a fix given a diagnostic excerpt and the
// current contents of the configuration files, keyed by file name
// ("gradle.properties", "build.gradle"). The response is parsed into a
// FixProposal; malformed responses come back as ActionInvalid proposals,
// not errors. The error cases are provider failure and ErrTimeout.
func (c *Client) Propose(ctx context.Context, diagnostic string, contents map[string]string) (*FixProposal, error) {
	provider, err := c.factory.GetProvider(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []Message{
			{Role: RoleUser, Content: buildUserMessage(diagnostic, contents)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	c.logger.Debug("consulting fix oracle",
		"provider", provider.Name(),
		"diagnostic_bytes", len(diagnostic))

	resp, err := provider.Complete(callCtx, req)
	if err != nil {
		c.factory.ReportFailure(provider.Name())
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s (provider %s)", ErrTimeout, c.timeout, provider.Name())
		}
		return nil, fmt.Errorf("oracle call failed (provider %s): %w", provider.Name(), err)
	}
	c.factory.ReportSuccess(provider.Name())
	c.usage.Add(resp.Usage)

	proposal := ParseResponse(resp.Content)
	c.logger.Debug("oracle responded",
		"provider", provider.Name(),
		"action", proposal.Action.String(),
		"target", proposal.TargetFile.String(),
		"output_tokens", resp.Usage.OutputTokens)

	return proposal, nil
}

// systemPrompt frames the oracle as a Gradle build engineer and pins the
// tagged response format the parser expects.
const systemPrompt = `You are an expert Gradle build engineer. You diagnose failed Gradle
builds and propose a single precise fix to either gradle.properties or
build.gradle.

Respond in exactly this format:

Observation: <what you observe from the error>
Thought: <your reasoning>
Action: <MODIFY_GRADLE_PROPERTIES or MODIFY_BUILD_GRADLE or NO_FIX>
Action_Input_File: <gradle.properties or build.gradle>
Match_Pattern: <optional: a regular expression matching the exact line or block to replace>
Action_Input_Content: <the exact content to add or to substitute for the matched region>

Rules:
- Propose exactly one edit per response.
- Omit Match_Pattern to append the content to the end of the file.
- Include Match_Pattern only when an existing line or block must change.
- If no change is needed or you cannot determine a fix, respond with
  "Action: NO_FIX" and omit the remaining tags.`

// buildUserMessage assembles the per-attempt prompt from the diagnostic
// excerpt and current file contents.
func buildUserMessage(diagnostic string, contents map[string]string) string {
	var sb strings.Builder

	sb.WriteString("A Gradle build has failed with the following error:\n")
	sb.WriteString("--- ERROR ---\n")
	sb.WriteString(diagnostic)
	sb.WriteString("\n--- END ERROR ---\n")

	for _, name := range []string{"gradle.properties", "build.gradle"} {
		content, ok := contents[name]
		if !ok {
			continue
		}
		upper := strings.ToUpper(name)
		fmt.Fprintf(&sb, "\nCurrent content of %s:\n--- %s ---\n%s\n--- END %s ---\n",
			name, upper, content, upper)
	}

	sb.WriteString("\nIdentify the problem and provide a precise fix in the required format.")
	return sb.String()
}
