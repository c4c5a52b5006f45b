package oracle

import (
	"context"
	"fmt"
	"os"
)

// Factory creates and manages oracle providers with circuit breakers.
// It auto-detects available providers from environment variables and
// supports automatic failover when the primary provider is unavailable.
type Factory struct {
	providers map[string]Provider
	breakers  map[string]*CircuitBreaker
	primary   string
}

// factoryOptions holds configuration for creating a factory.
type factoryOptions struct {
	primary        string
	preferredOrder []string
}

// FactoryOption configures a Factory.
type FactoryOption func(*factoryOptions)

// WithPrimaryProvider sets the preferred provider name.
// If the primary provider is unavailable, the factory falls back to others.
func WithPrimaryProvider(name string) FactoryOption {
	return func(o *factoryOptions) {
		o.primary = name
	}
}

// WithProviderOrder sets the preferred provider order.
// The first provider in the list becomes the primary.
func WithProviderOrder(providers []string) FactoryOption {
	return func(o *factoryOptions) {
		if len(providers) > 0 {
			o.preferredOrder = providers
			o.primary = providers[0]
		}
	}
}

// NewFactory creates a factory with available providers.
// It auto-detects available providers based on environment variables:
//   - Claude: available if ANTHROPIC_API_KEY is set
//   - Gemini: available if GOOGLE_API_KEY or GEMINI_API_KEY is set
//   - Local: available if GRADLEMEND_LOCAL_URL is set
//
// Returns an error if no providers are available.
func NewFactory(ctx context.Context, opts ...FactoryOption) (*Factory, error) {
	o := &factoryOptions{
		primary: "claude", // Default primary provider
	}
	for _, opt := range opts {
		opt(o)
	}

	f := &Factory{
		providers: make(map[string]Provider),
		breakers:  make(map[string]*CircuitBreaker),
		primary:   o.primary,
	}

	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		provider, err := NewClaudeProvider()
		if err == nil {
			f.register("claude", provider)
		}
	}

	if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "" {
		provider, err := NewGeminiProvider(ctx)
		if err == nil {
			f.register("gemini", provider)
		}
	}

	if os.Getenv("GRADLEMEND_LOCAL_URL") != "" {
		provider, err := NewLocalProvider()
		if err == nil {
			f.register("local", provider)
		}
	}

	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no oracle providers available: set ANTHROPIC_API_KEY, GOOGLE_API_KEY, or GRADLEMEND_LOCAL_URL")
	}

	return f, nil
}

// NewFactoryWithProviders creates a factory with the given providers.
// This is useful for testing with mock providers.
func NewFactoryWithProviders(providers map[string]Provider, opts ...FactoryOption) *Factory {
	o := &factoryOptions{
		primary: "claude",
	}
	for _, opt := range opts {
		opt(o)
	}

	f := &Factory{
		providers: make(map[string]Provider),
		breakers:  make(map[string]*CircuitBreaker),
		primary:   o.primary,
	}

	for name, provider := range providers {
		f.register(name, provider)
	}

	return f
}

func (f *Factory) register(name string, provider Provider) {
	f.providers[name] = provider
	f.breakers[name] = NewCircuitBreaker(name)
}

// GetProvider returns an available provider, respecting circuit breaker state.
// Returns the primary provider if available and its breaker allows requests.
// Otherwise, falls back to any available provider with an open breaker.
// Returns an error if no providers are available.
func (f *Factory) GetProvider(ctx context.Context) (Provider, error) {
	if provider, ok := f.providers[f.primary]; ok {
		if breaker := f.breakers[f.primary]; breaker != nil && breaker.Allow() {
			return provider, nil
		}
	}

	for name, provider := range f.providers {
		if name == f.primary {
			continue // Already tried primary
		}
		if breaker := f.breakers[name]; breaker != nil && breaker.Allow() {
			return provider, nil
		}
	}

	return nil, fmt.Errorf("no oracle providers available: all circuit breakers are open")
}

// ReportSuccess records a successful call for the specified provider.
// This resets the circuit breaker failure count and closes the breaker.
func (f *Factory) ReportSuccess(providerName string) {
	if breaker, ok := f.breakers[providerName]; ok {
		breaker.RecordSuccess()
	}
}

// ReportFailure records a failed call for the specified provider.
// This increments the circuit breaker failure count and may trip the breaker.
func (f *Factory) ReportFailure(providerName string) {
	if breaker, ok := f.breakers[providerName]; ok {
		breaker.RecordFailure()
	}
}

// AvailableProviders returns names of providers whose circuit breakers
// are closed or half-open (i.e., allowing requests).
func (f *Factory) AvailableProviders() []string {
	var available []string
	for name, breaker := range f.breakers {
		if breaker.Allow() {
			available = append(available, name)
		}
	}
	return available
}

// HasProvider returns true if the factory has the specified provider.
func (f *Factory) HasProvider(name string) bool {
	_, ok := f.providers[name]
	return ok
}
