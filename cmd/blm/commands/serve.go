package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
	"github.com/AiDave71/Bannerlord.LauncherManager/server"
	"github.com/AiDave71/Bannerlord.LauncherManager/version"
)

// ServeCmd starts the graph push server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the graph push server",
	Long: `Start the HTTP and WebSocket server. REST endpoints expose the graph,
trees, validation, order analysis, and snapshots; WebSocket clients receive
a fresh graph whenever the module catalog changes on disk.`,
	RunE: runServe,
}

var servePort int

func init() {
	registerCatalogFlags(ServeCmd)
	ServeCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	srv := server.NewServer(cfg, cat, selection, store, logger.Logger)

	watcher, err := startCatalogWatcher(cfg, srv)
	if err != nil {
		logger.Warnw("Catalog watching disabled", "error", err.Error())
	} else if watcher != nil {
		defer watcher.Stop()
	}

	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}

	printServeBanner(port, cat.Len())

	// Serve until interrupted
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Infow("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// startCatalogWatcher watches whichever catalog source is configured and
// pushes reloads into the server
func startCatalogWatcher(cfg *config.Config, srv *server.Server) (*catalog.Watcher, error) {
	var watcher *catalog.Watcher
	var err error

	switch {
	case catalogFile != "":
		watcher, err = catalog.WatchDocument(catalogFile)
	case cfg.Game.CatalogFile != "":
		watcher, err = catalog.WatchDocument(cfg.Game.CatalogFile)
	case gamePath != "":
		watcher, err = catalog.WatchModulesDir(gamePath)
	case cfg.Game.Path != "":
		watcher, err = catalog.WatchModulesDir(cfg.Game.Path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	watcher.OnReload(func(cat *catalog.Catalog, selection catalog.Selection) error {
		srv.UpdateCatalog(cat, selection)
		return nil
	})
	watcher.Start()
	return watcher, nil
}

func printServeBanner(port int, modules int) {
	info := version.Get()
	pterm.Printf("%s %s\n", pterm.LightCyan("blm"), pterm.Gray(info.Version))
	pterm.Printf("Serving %s modules on %s\n",
		pterm.Green(pterm.Sprintf("%d", modules)),
		pterm.Green(pterm.Sprintf("http://localhost:%d", port)))
	pterm.Printf("WebSocket graph push on %s\n",
		pterm.Gray(pterm.Sprintf("ws://localhost:%d/ws", port)))
}
