package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search assets by name",
	Long: `Search matches the query as a substring of asset names. Matching is
case-insensitive unless search.case_sensitive is set in the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	refs := e.registry.SearchByName(args[0])
	if len(refs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no assets matching %q\n", args[0])
		return nil
	}
	printReferences(cmd, refs)
	return nil
}
