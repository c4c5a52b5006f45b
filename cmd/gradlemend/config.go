package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradlemend/gradlemend/internal/userconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gradlemend configuration",
	Long: `Manage gradlemend configuration settings.

Configuration is stored in $GRADLEMEND_HOME/config.toml
(default ~/.gradlemend/config.toml).

Available settings:
  providers       Oracle provider preference order (comma separated)
  max_attempts    Fix attempts per repair session
  build_timeout   Per-build timeout (Go duration, e.g. 10m)
  oracle_timeout  Per-oracle-call timeout (Go duration, e.g. 2m)
  listen          Serve command bind address
  workspace       Directory for fetched projects

Examples:
  gradlemend config get max_attempts
  gradlemend config set providers gemini,claude`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		value, ok := cfg.Get(key)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys()
			exitWithCode(ExitUsage)
		}

		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]

		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys()
			exitWithCode(ExitUsage)
		}

		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		fmt.Printf("%s = %s\n", key, value)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		for _, key := range userconfig.Keys() {
			value, _ := cfg.Get(key)
			fmt.Printf("%s = %s\n", key, value)
		}
	},
}

func printAvailableKeys() {
	for _, key := range userconfig.Keys() {
		fmt.Fprintf(os.Stderr, "  %s\n", key)
	}
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}
