package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vehement/assetdb/internal/registry"
	"github.com/vehement/assetdb/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and hot-reload assets on change",
	Long: `Watch imports every asset file under the directory, then watches the
imported files. A changed file is reimported in place after the debounce
delay; a deleted file is unregistered. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolP("recursive", "r", true, "descend into subdirectories")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(context.Background())

	recursive, _ := cmd.Flags().GetBool("recursive")
	root := e.resolvePath(args[0])

	settings := registry.ImportSettings{
		ValidateOnImport:  cfg.Import.Validate,
		AutoMigrate:       cfg.Import.Migrate,
		TrackDependencies: cfg.Import.TrackDependencies,
	}
	imported, failed, err := e.registry.ImportDirectory(ctx, root, recursive, settings)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %d assets (%d failed to import)\n", imported, failed)

	w, err := watcher.New(watcher.Config{
		PollInterval: cfg.Watcher.PollInterval,
		Debounce:     cfg.Watcher.Debounce,
	}, e.registry, nil)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	for _, ref := range e.registry.ListAll() {
		if !ref.Loaded || ref.Path == "" {
			continue
		}
		if err := w.Watch(ref.Path); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cannot watch %s: %v\n", ref.Path, err)
		}
	}

	w.OnReload(func(event watcher.ReloadEvent) {
		if event.Deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%s)\n", event.ID, event.Path)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reloaded %s (%s %s)\n",
			event.ID, event.Type, event.Path)
	})

	tick := cfg.Watcher.PollInterval / 4
	if tick <= 0 {
		tick = 500 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Persist what the session learned before exiting.
			if err := e.registry.SaveIndex(context.Background()); err != nil {
				return fmt.Errorf("saving index: %w", err)
			}
			return nil
		case <-ticker.C:
			w.Update(ctx)
		}
	}
}
