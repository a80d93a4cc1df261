package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vehement/assetdb/internal/asset"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	stats := e.registry.GetStatistics()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total assets:     %d\n", stats.TotalAssets)
	fmt.Fprintf(out, "loaded assets:    %d\n", stats.LoadedAssets)
	fmt.Fprintf(out, "dependency edges: %d\n", stats.DependencyEdges)
	fmt.Fprintf(out, "hot reloads:      %d\n", stats.Reloads)

	if len(stats.ByType) == 0 {
		return nil
	}

	types := make([]string, 0, len(stats.ByType))
	for t := range stats.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCOUNT")
	for _, t := range types {
		fmt.Fprintf(w, "%s\t%d\n", t, stats.ByType[asset.Type(t)])
	}
	return w.Flush()
}
