package oracle

import (
	"context"
	"errors"
	"testing"
)

// mockProvider is a configurable Provider for factory and client tests.
type mockProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &CompletionResponse{
		Content:    m.response,
		StopReason: "end_turn",
		Usage:      Usage{InputTokens: 10, OutputTokens: 20},
	}, nil
}

func TestFactoryReturnsPrimary(t *testing.T) {
	claude := &mockProvider{name: "claude"}
	gemini := &mockProvider{name: "gemini"}

	f := NewFactoryWithProviders(map[string]Provider{
		"claude": claude,
		"gemini": gemini,
	}, WithPrimaryProvider("gemini"))

	p, err := f.GetProvider(context.Background())
	if err != nil {
		t.Fatalf("GetProvider: %v", err)
	}
	if p.Name() != "gemini" {
		t.Errorf("expected primary gemini, got %s", p.Name())
	}
}

func TestFactoryFailoverWhenPrimaryTripped(t *testing.T) {
	f := NewFactoryWithProviders(map[string]Provider{
		"claude": &mockProvider{name: "claude"},
		"gemini": &mockProvider{name: "gemini"},
	}, WithPrimaryProvider("claude"))

	for i := 0; i < 3; i++ {
		f.ReportFailure("claude")
	}

	p, err := f.GetProvider(context.Background())
	if err != nil {
		t.Fatalf("GetProvider: %v", err)
	}
	if p.Name() != "gemini" {
		t.Errorf("expected failover to gemini, got %s", p.Name())
	}
}

func TestFactoryAllBreakersOpen(t *testing.T) {
	f := NewFactoryWithProviders(map[string]Provider{
		"claude": &mockProvider{name: "claude"},
	})

	for i := 0; i < 3; i++ {
		f.ReportFailure("claude")
	}

	if _, err := f.GetProvider(context.Background()); err == nil {
		t.Fatal("expected error when all breakers are open")
	}
}

func TestFactoryProviderOrder(t *testing.T) {
	f := NewFactoryWithProviders(map[string]Provider{
		"claude": &mockProvider{name: "claude"},
		"local":  &mockProvider{name: "local"},
	}, WithProviderOrder([]string{"local", "claude"}))

	p, err := f.GetProvider(context.Background())
	if err != nil {
		t.Fatalf("GetProvider: %v", err)
	}
	if p.Name() != "local" {
		t.Errorf("expected ordered primary local, got %s", p.Name())
	}
}

func TestFactorySuccessClosesBreaker(t *testing.T) {
	f := NewFactoryWithProviders(map[string]Provider{
		"claude": &mockProvider{name: "claude"},
	}, WithPrimaryProvider("claude"))

	for i := 0; i < 3; i++ {
		f.ReportFailure("claude")
	}
	f.ReportSuccess("claude")

	p, err := f.GetProvider(context.Background())
	if err != nil {
		t.Fatalf("GetProvider after recovery: %v", err)
	}
	if p.Name() != "claude" {
		t.Errorf("expected claude after recovery, got %s", p.Name())
	}
}

func TestFactoryHasProvider(t *testing.T) {
	f := NewFactoryWithProviders(map[string]Provider{
		"local": &mockProvider{name: "local"},
	})

	if !f.HasProvider("local") {
		t.Error("expected HasProvider(local) to be true")
	}
	if f.HasProvider("claude") {
		t.Error("expected HasProvider(claude) to be false")
	}
}

func TestFactoryAvailableProviders(t *testing.T) {
	f := NewFactoryWithProviders(map[string]Provider{
		"claude": &mockProvider{name: "claude"},
		"gemini": &mockProvider{name: "gemini"},
	})

	if got := f.AvailableProviders(); len(got) != 2 {
		t.Errorf("expected 2 available providers, got %v", got)
	}

	for i := 0; i < 3; i++ {
		f.ReportFailure("gemini")
	}

	got := f.AvailableProviders()
	if len(got) != 1 || got[0] != "claude" {
		t.Errorf("expected only claude available, got %v", got)
	}
}

var errProviderDown = errors.New("provider unavailable")
