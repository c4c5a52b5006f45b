// Package diagnose reduces raw Gradle build output into a bounded
// diagnostic excerpt suitable for an oracle prompt.
package diagnose

import (
	"regexp"
	"strings"
)

// DefaultBudget is the excerpt character budget. Extraction stops once
// the excerpt reaches it; the last contributing match may overshoot.
const DefaultBudget = 1500

// DefaultTailLines is how many trailing lines the fallback keeps when
// no pattern matches anything.
const DefaultTailLines = 50

// errorPatterns are tried in priority order. Earlier patterns capture
// the structured failure blocks Gradle prints; later ones catch
// progressively more generic error text.
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)FAILURE: Build failed with an exception\.`),
	regexp.MustCompile(`(?is)\* What went wrong:(.*?)\* Try:`),
	regexp.MustCompile(`(?i)Could not resolve all dependencies for configuration '(.*?)'`),
	regexp.MustCompile(`(?i)Execution failed for task '(.*?)'`),
	regexp.MustCompile(`(?is)Caused by:(.*?)(?:\n\n|\z)`),
	regexp.MustCompile(`(?is)Error:(.*?)(?:\n\n|\z)`),
}

// Extractor produces diagnostic excerpts from raw build output.
// It is deterministic for identical input and never fails: when no
// pattern matches, it falls back to the tail of the output.
type Extractor struct {
	budget    int
	tailLines int
	patterns  []*regexp.Regexp
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithBudget sets the excerpt character budget.
func WithBudget(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.budget = n
		}
	}
}

// WithTailLines sets the fallback tail length.
func WithTailLines(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.tailLines = n
		}
	}
}

// NewExtractor creates an Extractor with the default Gradle patterns.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		budget:    DefaultBudget,
		tailLines: DefaultTailLines,
		patterns:  errorPatterns,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns a bounded diagnostic excerpt for rawOutput.
// For each pattern in priority order it collects all matches into the
// excerpt until the budget is reached. When nothing matches, the last
// tailLines lines of the output (or the whole output if shorter) are
// returned. The result is empty only when rawOutput is empty.
func (e *Extractor) Extract(rawOutput string) string {
	if rawOutput == "" {
		return ""
	}

	var parts []string
	total := 0

patterns:
	for _, pattern := range e.patterns {
		for _, match := range pattern.FindAllStringSubmatch(rawOutput, -1) {
			// Prefer the captured group when the pattern has one;
			// marker-only patterns contribute the full match.
			text := match[0]
			if len(match) > 1 {
				text = match[1]
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}

			parts = append(parts, text)
			total += len(text) + 1
			if total > e.budget {
				break patterns
			}
		}
	}

	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	return tail(rawOutput, e.tailLines)
}

// tail returns the last n lines of s, or s itself if shorter.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
