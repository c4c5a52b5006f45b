// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/oracle"
	"github.com/gradlemend/gradlemend/internal/patch"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	ProjectPath string // The project being repaired (for suggestions)
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	var invocationErr *gradle.InvocationError
	if errors.As(err, &invocationErr) {
		return formatInvocationError(invocationErr, ctx)
	}

	var unparsableErr *oracle.UnparsableError
	if errors.As(err, &unparsableErr) {
		return formatUnparsableError(unparsableErr)
	}

	var writeErr *patch.WriteError
	if errors.As(err, &writeErr) {
		return formatWriteError(writeErr)
	}

	if errors.Is(err, oracle.ErrTimeout) {
		return formatOracleTimeout(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || isNetworkError(err.Error()) {
		return formatNetworkError(err)
	}

	// Return original error for unrecognized types
	return err.Error()
}

func formatInvocationError(err *gradle.InvocationError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The project has no gradlew wrapper script\n")
	sb.WriteString("  - Gradle is not installed or not on PATH\n")
	sb.WriteString("  - The wrapper script is not executable\n")

	sb.WriteString("\nSuggestions:\n")
	if ctx != nil && ctx.ProjectPath != "" {
		sb.WriteString(fmt.Sprintf("  - Check that %s is a Gradle project root\n", ctx.ProjectPath))
	}
	sb.WriteString("  - Run 'gradle wrapper' in the project to generate gradlew\n")
	sb.WriteString("  - Install Gradle or add it to PATH\n")

	return sb.String()
}

func formatUnparsableError(err *oracle.UnparsableError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The model ignored the required response format\n")
	sb.WriteString("  - The response was truncated by the token limit\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Retry; oracle responses are not deterministic\n")
	sb.WriteString("  - Try a different provider with --provider\n")

	return sb.String()
}

func formatWriteError(err *patch.WriteError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Insufficient permissions on the project directory\n")
	sb.WriteString("  - The disk is full\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString(fmt.Sprintf("  - Check permissions: ls -la %s\n", err.Path))
	sb.WriteString("  - Ensure the project is not mounted read-only\n")

	return sb.String()
}

func formatOracleTimeout(err error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Slow or unstable network connection\n")
	sb.WriteString("  - The provider is overloaded\n")
	sb.WriteString("  - A local model server that is still loading\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Raise oracle_timeout: gradlemend config set oracle_timeout 5m\n")
	sb.WriteString("  - Try a different provider with --provider\n")

	return sb.String()
}

func formatNetworkError(err error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - DNS resolution failure\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

// isNetworkError checks if the error message indicates a network issue
func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "i/o timeout")
}
