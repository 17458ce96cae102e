package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
	"github.com/AiDave71/Bannerlord.LauncherManager/snapshot"
)

// SnapshotCmd manages the load order snapshot history
var SnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage load order snapshots",
	Long: `Save, list, inspect, delete, and diff load order snapshots.

The history is bounded (snapshot.max_snapshots); saving beyond the bound
evicts the oldest snapshot. The backing store is a JSON document or a
SQLite database, per snapshot.backend.

Examples:
  blm snapshot save -d "before 1.2 update"
  blm snapshot list
  blm snapshot show <id>
  blm snapshot diff <id>          # Compare against the current order
  blm snapshot delete <id>`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot the current load order",
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <id>",
	Short: "Diff a snapshot against the current load order",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDiff,
}

var snapshotDescription string

func init() {
	registerCatalogFlags(SnapshotCmd)
	snapshotSaveCmd.Flags().StringVarP(&snapshotDescription, "description", "d", "", "Snapshot description")

	SnapshotCmd.AddCommand(snapshotSaveCmd)
	SnapshotCmd.AddCommand(snapshotListCmd)
	SnapshotCmd.AddCommand(snapshotShowCmd)
	SnapshotCmd.AddCommand(snapshotDeleteCmd)
	SnapshotCmd.AddCommand(snapshotDiffCmd)
}

// openSnapshotStore builds the configured snapshot store backend
func openSnapshotStore(cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Snapshot.Backend {
	case "", "file":
		return snapshot.NewFileStore(cfg.Snapshot.Path, cfg.Snapshot.MaxSnapshots, logger.Logger)
	case "sqlite":
		return snapshot.NewSQLiteStore(cfg.Snapshot.Path, cfg.Snapshot.MaxSnapshots, logger.Logger)
	default:
		return nil, errors.Newf("unknown snapshot backend %q (supported: file, sqlite)", cfg.Snapshot.Backend)
	}
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	store, err := openSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Save(enabledOrder(cat, selection), selection, snapshotDescription)
	if err != nil {
		return err
	}

	pterm.Success.Printf("Saved snapshot %s (%d modules)\n", snap.ID, len(snap.ModuleOrder))
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	store, err := openSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		pterm.Info.Println("No snapshots stored")
		return nil
	}

	data := pterm.TableData{{"ID", "Created", "Modules", "Description"}}
	for _, snap := range snaps {
		data = append(data, []string{
			snap.ID,
			snap.CreatedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", len(snap.ModuleOrder)),
			snap.Description,
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render snapshot table")
	}
	pterm.Println(out)
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	store, err := openSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Get(args[0])
	if err != nil {
		return err
	}

	pterm.Printf("Snapshot %s\n", pterm.LightCyan(snap.ID))
	pterm.Printf("Created: %s\n", snap.CreatedAt.Local().Format(time.RFC3339))
	if snap.Description != "" {
		pterm.Printf("Description: %s\n", snap.Description)
	}
	for i, id := range snap.ModuleOrder {
		state := pterm.Green("on")
		if !snap.EnabledState[id] {
			state = pterm.Gray("off")
		}
		pterm.Printf("  %3d  %-40s %s\n", i, id, state)
	}
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	store, err := openSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(args[0]); err != nil {
		return err
	}
	pterm.Success.Printf("Deleted snapshot %s\n", args[0])
	return nil
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	store, err := openSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	diff, err := store.Compare(args[0], enabledOrder(cat, selection), selection)
	if err != nil {
		return err
	}

	if diff.Empty() {
		pterm.Success.Println("No differences")
		return nil
	}

	for _, id := range diff.Added {
		pterm.Printf("%s %s\n", pterm.Green("+"), id)
	}
	for _, id := range diff.Removed {
		pterm.Printf("%s %s\n", pterm.Red("-"), id)
	}
	for _, change := range diff.PositionChanges {
		pterm.Printf("%s %s: %d -> %d\n", pterm.Yellow("~"), change.ModuleID, change.OldIndex, change.NewIndex)
	}
	for _, change := range diff.StateChanges {
		pterm.Printf("%s %s: enabled %t -> %t\n", pterm.Yellow("~"), change.ModuleID, change.OldEnabled, change.NewEnabled)
	}
	return nil
}
