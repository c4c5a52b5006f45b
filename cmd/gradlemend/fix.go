package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradlemend/gradlemend/internal/errmsg"
	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/oracle"
	"github.com/gradlemend/gradlemend/internal/patch"
	"github.com/gradlemend/gradlemend/internal/repair"
	"github.com/gradlemend/gradlemend/internal/userconfig"
)

var (
	fixDependency    string
	fixValue         string
	fixProvider      string
	fixMaxAttempts   int
	fixBuildTimeout  time.Duration
	fixOracleTimeout time.Duration
)

var fixCmd = &cobra.Command{
	Use:   "fix <project-path>",
	Short: "Repair a failing Gradle build",
	Long: `Run the Gradle build in the given project and repair it if it fails.

With --dependency and --value, the property is written to
gradle.properties before the first build, matching the update-and-build
flow of the serve endpoint.

Examples:
  gradlemend fix ./my-service
  gradlemend fix ./my-service --dependency kotlinVersion --value 1.9.23
  gradlemend fix ./my-service --provider gemini --max-attempts 5`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runFix(args[0])
	},
}

func init() {
	fixCmd.Flags().StringVar(&fixDependency, "dependency", "", "property name to set before building")
	fixCmd.Flags().StringVar(&fixValue, "value", "", "property value to set before building")
	fixCmd.Flags().StringVar(&fixProvider, "provider", "", "oracle provider to prefer (claude, gemini, local)")
	fixCmd.Flags().IntVar(&fixMaxAttempts, "max-attempts", 0, "fix attempts before giving up (default from config)")
	fixCmd.Flags().DurationVar(&fixBuildTimeout, "build-timeout", 0, "per-build timeout (default from config)")
	fixCmd.Flags().DurationVar(&fixOracleTimeout, "oracle-timeout", 0, "per-oracle-call timeout (default from config)")
}

func runFix(projectPath string) {
	if (fixDependency == "") != (fixValue == "") {
		fmt.Fprintln(os.Stderr, "Error: --dependency and --value must be used together")
		exitWithCode(ExitUsage)
	}

	projectPath, err := filepath.Abs(projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitUsage)
	}
	if info, err := os.Stat(projectPath); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", projectPath)
		exitWithCode(ExitUsage)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		exitWithCode(ExitGeneral)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := resolveSettings(cfg, fixProvider, fixMaxAttempts, fixBuildTimeout, fixOracleTimeout)
	orchestrator, err := buildOrchestrator(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitGeneral)
	}

	if fixDependency != "" {
		propsPath := filepath.Join(projectPath, gradle.PropertiesFile)
		if err := gradle.SetProperty(propsPath, fixDependency, fixValue); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitApplyFailed)
		}
		printInfof("Set %s=%s in %s\n", fixDependency, fixValue, propsPath)
	}

	result, err := orchestrator.Repair(ctx, projectPath)
	reportResult(result, err, projectPath)
}

// reportResult prints the session outcome and exits with a code that
// identifies the failure mode.
func reportResult(result *repair.Result, err error, projectPath string) {
	if result != nil && result.Session != nil {
		printInfof("Session %s: %d attempt(s), terminal state %s\n",
			result.Session.ID, len(result.Session.Attempts), result.State)
		if fix := result.Session.LastAppliedFix(); fix != "" {
			printInfof("Last applied fix:\n%s\n", fix)
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(err, &errmsg.ErrorContext{ProjectPath: projectPath}))

		var invocationErr *gradle.InvocationError
		var unparsableErr *oracle.UnparsableError
		var writeErr *patch.WriteError
		switch {
		case errors.As(err, &invocationErr):
			exitWithCode(ExitBuildInvocation)
		case errors.As(err, &unparsableErr):
			exitWithCode(ExitUnparsable)
		case errors.As(err, &writeErr):
			exitWithCode(ExitApplyFailed)
		case errors.Is(err, oracle.ErrTimeout):
			exitWithCode(ExitOracle)
		default:
			exitWithCode(ExitGeneral)
		}
	}

	switch result.State {
	case repair.StateSuccess:
		printInfo("Build succeeded.")
		exitWithCode(ExitSuccess)
	case repair.StateExhausted:
		fmt.Fprintf(os.Stderr, "Build still failing after %d attempt(s).\n", len(result.Session.Attempts))
		exitWithCode(ExitExhausted)
	default:
		if result.Reason == repair.ReasonNoFix {
			fmt.Fprintln(os.Stderr, "Oracle could not propose a fix.")
			exitWithCode(ExitNoFix)
		}
		fmt.Fprintf(os.Stderr, "Repair failed: %s\n", result.Reason)
		exitWithCode(ExitGeneral)
	}
}
