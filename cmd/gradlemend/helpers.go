package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/log"
	"github.com/gradlemend/gradlemend/internal/oracle"
	"github.com/gradlemend/gradlemend/internal/patch"
	"github.com/gradlemend/gradlemend/internal/repair"
	"github.com/gradlemend/gradlemend/internal/userconfig"
)

// printInfo prints an informational message unless quiet mode is enabled
func printInfo(msg string) {
	if !quietFlag {
		fmt.Println(msg)
	}
}

// printInfof prints a formatted informational message unless quiet mode is enabled
func printInfof(format string, args ...any) {
	if !quietFlag {
		fmt.Printf(format, args...)
	}
}

// orchestratorSettings are the per-invocation knobs resolved from the
// user config and command flags.
type orchestratorSettings struct {
	providers     []string
	primary       string
	maxAttempts   int
	buildTimeout  time.Duration
	oracleTimeout time.Duration
}

// resolveSettings merges flag overrides onto the user config.
func resolveSettings(cfg *userconfig.Config, provider string, maxAttempts int, buildTimeout, oracleTimeout time.Duration) orchestratorSettings {
	s := orchestratorSettings{
		providers:     cfg.Providers,
		maxAttempts:   cfg.MaxAttempts,
		buildTimeout:  cfg.BuildTimeoutDuration(),
		oracleTimeout: cfg.OracleTimeoutDuration(),
	}
	if len(s.providers) > 0 {
		s.primary = s.providers[0]
	}
	if provider != "" {
		s.primary = provider
	}
	if maxAttempts > 0 {
		s.maxAttempts = maxAttempts
	}
	if buildTimeout > 0 {
		s.buildTimeout = buildTimeout
	}
	if oracleTimeout > 0 {
		s.oracleTimeout = oracleTimeout
	}
	return s
}

// buildOrchestrator constructs the repair orchestrator and its
// collaborators from resolved settings. The oracle factory detects
// providers from the environment; the caller's preference order picks
// the primary.
func buildOrchestrator(ctx context.Context, s orchestratorSettings) (*repair.Orchestrator, error) {
	opts := []oracle.FactoryOption{oracle.WithProviderOrder(s.providers)}
	if s.primary != "" {
		opts = append(opts, oracle.WithPrimaryProvider(s.primary))
	}
	factory, err := oracle.NewFactory(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if s.primary != "" && !factory.HasProvider(s.primary) {
		return nil, fmt.Errorf("oracle provider %q is not available; detected: %v",
			s.primary, factory.AvailableProviders())
	}

	logger := log.Default()
	client := oracle.NewClient(factory,
		oracle.WithCallTimeout(s.oracleTimeout),
		oracle.WithClientLogger(logger),
	)
	runner := gradle.NewRunner(
		gradle.WithTimeout(s.buildTimeout),
		gradle.WithLogger(logger),
	)

	return repair.New(runner, client,
		repair.WithMaxAttempts(s.maxAttempts),
		repair.WithApplier(patch.NewApplier(patch.WithLogger(logger))),
		repair.WithLogger(logger),
	), nil
}
