package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every loaded asset against its schema",
	Long: `Validate runs schema validation over every loaded asset and checks that
all recorded dependencies resolve. Exits non-zero if any asset has errors.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	results := e.registry.ValidateAll()

	var errCount, warnCount int
	for _, res := range results {
		for _, msg := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %s\n", res.ID, msg)
			errCount++
		}
		for _, msg := range res.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s: %s\n", res.ID, msg)
			warnCount++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d assets checked, %d errors, %d warnings\n",
		len(results), errCount, warnCount)
	if errCount > 0 {
		return fmt.Errorf("validation failed with %d errors", errCount)
	}
	return nil
}
