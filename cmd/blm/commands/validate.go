package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// ValidateCmd checks the enabled selection for broken dependencies
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the enabled selection for broken dependencies",
	Long: `Check every enabled module for missing dependencies, disabled
dependencies, enabled incompatibilities, and circular dependency chains.

Exits non-zero when any issue is found, so the command can gate scripts
that apply a load order.`,
	RunE: runValidate,
}

func init() {
	registerCatalogFlags(ValidateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	issues := depgraph.Validate(cat, selection)
	if len(issues) == 0 {
		pterm.Success.Println("Selection is valid")
		return nil
	}

	for _, issue := range issues {
		pterm.Printf("%s %s: %s\n",
			pterm.Red("["+issue.Kind+"]"), issue.ModuleID, issue.Message)
	}
	return errors.Newf("%d issue(s) found", len(issues))
}
