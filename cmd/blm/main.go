package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/cmd/blm/commands"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
)

var rootCmd = &cobra.Command{
	Use:   "blm",
	Short: "blm - Bannerlord module dependency and load order manager",
	Long: `blm - Mount & Blade II: Bannerlord module dependency and load order manager.

blm reads the installed module catalog (SubModule.xml descriptors or an
explicit catalog document), builds the dependency graph, diagnoses cycles
and broken dependencies, and synthesizes a load order the game can start with.

Available commands:
  graph    - Build and export the module dependency graph
  tree     - Show dependency and dependent trees for one module
  validate - Check the enabled selection for broken dependencies
  order    - Analyze and synthesize load orders
  snapshot - Manage load order snapshots
  config   - Show and query configuration
  serve    - Start the graph push server

Examples:
  blm graph --format dot          # Export the graph as Graphviz markup
  blm tree Harmony                # Inspect one module's dependencies
  blm order analyze               # Grade the current load order
  blm order synthesize            # Produce a valid load order
  blm snapshot save -d "backup"   # Snapshot the current order
  blm serve                       # Start the graph push server`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		level := zap.InfoLevel
		if verbosity > 0 {
			level = zap.DebugLevel
		}
		if err := logger.InitializeWithLevel(false, level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.GraphCmd)
	rootCmd.AddCommand(commands.TreeCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.OrderCmd)
	rootCmd.AddCommand(commands.SnapshotCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
