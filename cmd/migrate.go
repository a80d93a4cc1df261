package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vehement/assetdb/internal/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <path>...",
	Short: "Upgrade asset files to their latest schema version",
	Long: `Migrate parses each file, applies the registered migration steps up to
the latest schema version for its type, and writes the result back. Files
already at the latest version are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "report what would change without writing")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	engine := migration.NewEngine(e.catalog)

	for _, arg := range args {
		path := e.resolvePath(arg)
		a, err := e.codec.LoadFromFile(ctx, path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", arg, err)
		}

		res, err := engine.MigrateToLatest(a.Metadata.Type, a.Metadata.Version, a.Document)
		if err != nil {
			return fmt.Errorf("migrating %s: %w", arg, err)
		}
		if res.Applied == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: already at v%s\n", arg, a.Metadata.Version)
			continue
		}

		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: would migrate v%s -> v%s (%d steps)\n",
				arg, res.From, res.To, res.Applied)
			continue
		}

		a.Document = res.Document
		a.Metadata.Version = res.To
		if err := e.codec.SaveToFile(ctx, a, path); err != nil {
			return fmt.Errorf("writing %s: %w", arg, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: migrated v%s -> v%s (%d steps)\n",
			arg, res.From, res.To, res.Applied)
	}
	return nil
}
