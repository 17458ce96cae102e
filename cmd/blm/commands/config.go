package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// ConfigCmd shows and queries configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and query configuration",
	Long: `Display the effective configuration from all sources.

Configuration sources (in order of precedence):
1. Environment variables (BLM_* prefix)
2. Project config (./blm.toml, searching up directories)
3. User config (~/.blm/config.toml)
4. Default values

Examples:
  blm config show                 # Show effective configuration
  blm config show --format json   # Show configuration as JSON
  blm config get snapshot.path    # Get one value`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., game.path, snapshot.max_snapshots)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# blm configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# blm configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if _, err := config.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	v := config.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Println(v.Get(key))
	return nil
}
