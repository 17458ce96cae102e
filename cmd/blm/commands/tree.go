package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/export"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
)

// TreeCmd shows one module's dependency and dependent trees
var TreeCmd = &cobra.Command{
	Use:   "tree <module-id>",
	Short: "Show dependency and dependent trees for one module",
	Long: `Walk the required dependencies of one module downward and its dependents
upward, printing both trees.

Examples:
  blm tree Harmony
  blm tree Harmony --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

var treeJSON bool

func init() {
	registerCatalogFlags(TreeCmd)
	TreeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output the tree as JSON")
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	tree, err := depgraph.NewTreeBuilder(cat, selection, logger.Logger).Build(args[0])
	if err != nil {
		return err
	}

	if treeJSON {
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode tree")
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(export.TreeText(tree))
	return nil
}
