package commands

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// catalogFile and gamePath override the configured catalog source on any
// command that reads modules
var (
	catalogFile string
	gamePath    string
)

// registerCatalogFlags adds the catalog source overrides to a command
func registerCatalogFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "Explicit catalog document (json/toml/yaml) instead of scanning the game directory")
	cmd.PersistentFlags().StringVar(&gamePath, "game-path", "", "Game installation root (overrides game.path)")
}

// loadCatalog resolves the module catalog: an explicit document when
// configured (or given with --catalog), otherwise a scan of the game's
// Modules directory.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, catalog.Selection, error) {
	path := catalogFile
	if path == "" {
		path = cfg.Game.CatalogFile
	}
	if path != "" {
		return catalog.LoadDocument(path)
	}

	root := gamePath
	if root == "" {
		root = cfg.Game.Path
	}
	if root == "" {
		return nil, nil, errors.New("no catalog source: set game.path or game.catalog_file, or pass --catalog / --game-path")
	}
	return catalog.ScanModulesDir(root)
}

// enabledOrder returns the ids of enabled modules in catalog order, the
// default current order when none is supplied explicitly
func enabledOrder(cat *catalog.Catalog, selection catalog.Selection) []string {
	var out []string
	for _, m := range cat.Modules() {
		if selection.IsSelected(m.ID) {
			out = append(out, m.ID)
		}
	}
	return out
}

// readOrderFile reads a load order as one module id per line; blank lines
// and #-comments are skipped
func readOrderFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open order file %s", path)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read order file %s", path)
	}
	return out, nil
}
