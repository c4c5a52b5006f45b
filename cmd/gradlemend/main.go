package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradlemend/gradlemend/internal/log"
)

// Version is the current version of gradlemend
var Version = "0.1.0"

var (
	verboseFlag bool
	debugFlag   bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "gradlemend",
	Short: "Repair failing Gradle builds with an LLM fix oracle",
	Long: `gradlemend updates Gradle configuration and repairs failing builds.

It runs the project's Gradle build and, when the build fails, consults
an LLM oracle for a fix, applies the proposed edit to gradle.properties
or build.gradle, and re-runs the build, up to a bounded number of
attempts.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// setupLogging installs the global logger per the verbosity flags.
func setupLogging() {
	level := slog.LevelWarn
	switch {
	case debugFlag:
		level = slog.LevelDebug
	case verboseFlag:
		level = slog.LevelInfo
	case quietFlag:
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log.SetDefault(log.New(handler))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show operational context")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "show internal troubleshooting details")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "errors only")

	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}
