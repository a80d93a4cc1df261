package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <id> <path>",
	Short: "Write a loaded asset back out as a document file",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	id, path := args[0], e.resolvePath(args[1])
	if err := e.registry.ExportAsset(ctx, id, path); err != nil {
		return fmt.Errorf("exporting %s: %w", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", id, args[1])
	return nil
}
