package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gradlemend/gradlemend/internal/fetch"
	"github.com/gradlemend/gradlemend/internal/log"
	"github.com/gradlemend/gradlemend/internal/server"
	"github.com/gradlemend/gradlemend/internal/userconfig"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the repair API over HTTP",
	Long: `Start the HTTP API.

POST /v1/repairs accepts {project_url, dependency_name, dependency_value},
clones or updates the project in the workspace, applies the property
update, and runs a repair session. Concurrent requests for the same
project share one session.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "bind address (default from config)")
}

func runServe() {
	cfg, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		exitWithCode(ExitGeneral)
	}

	listen := cfg.Listen
	if serveListen != "" {
		listen = serveListen
	}

	workspace, err := cfg.WorkspaceDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitGeneral)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := resolveSettings(cfg, "", 0, 0, 0)
	orchestrator, err := buildOrchestrator(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitGeneral)
	}

	logger := log.Default()
	fetcher := fetch.NewFetcher(workspace, fetch.WithLogger(logger))
	srv := server.New(fetcher, orchestrator, server.WithLogger(logger))

	printInfof("Serving repair API on %s (workspace %s)\n", listen, workspace)
	if err := srv.Run(ctx, listen); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}
