package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vehement/assetdb/internal/registry"
)

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import asset files or directories into the registry",
	Long: `Import parses each document, detects its type, migrates it to the latest
schema version, validates it, and records its dependencies. Directories are
scanned for asset files; pass --recursive to descend into subdirectories.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	importCmd.Flags().Bool("no-validate", false, "skip schema validation")
	importCmd.Flags().Bool("no-migrate", false, "keep documents at their declared version")
	importCmd.Flags().Bool("no-deps", false, "skip dependency extraction")
	rootCmd.AddCommand(importCmd)
}

func importSettingsFromFlags(cmd *cobra.Command) registry.ImportSettings {
	settings := registry.ImportSettings{
		ValidateOnImport:  cfg.Import.Validate,
		AutoMigrate:       cfg.Import.Migrate,
		TrackDependencies: cfg.Import.TrackDependencies,
	}
	if skip, _ := cmd.Flags().GetBool("no-validate"); skip {
		settings.ValidateOnImport = false
	}
	if skip, _ := cmd.Flags().GetBool("no-migrate"); skip {
		settings.AutoMigrate = false
	}
	if skip, _ := cmd.Flags().GetBool("no-deps"); skip {
		settings.TrackDependencies = false
	}
	return settings
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	settings := importSettingsFromFlags(cmd)
	recursive, _ := cmd.Flags().GetBool("recursive")

	var imported, failed int
	for _, arg := range args {
		path := e.resolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", arg, err)
		}

		if info.IsDir() {
			ok, bad, err := e.registry.ImportDirectory(ctx, path, recursive, settings)
			if err != nil {
				return fmt.Errorf("importing directory %s: %w", arg, err)
			}
			imported += ok
			failed += bad
			continue
		}

		a, err := e.registry.ImportAsset(ctx, path, settings)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", arg, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s %s, v%s)\n",
			a.Metadata.ID, a.Metadata.Type, a.Metadata.Name, a.Metadata.Version)
		imported++
	}

	if err := e.registry.SaveIndex(ctx); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d imported, %d failed\n", imported, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, imported+failed)
	}
	return nil
}
