package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vehement/assetdb/internal/asset"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known assets from the index",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringP("type", "t", "", "filter by asset type (material, texture, ...)")
	listCmd.Flags().String("tag", "", "filter by tag")
	listCmd.Flags().Int("recent", 0, "show only the N most recently modified assets")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	typeName, _ := cmd.Flags().GetString("type")
	tag, _ := cmd.Flags().GetString("tag")
	recent, _ := cmd.Flags().GetInt("recent")

	var refs []asset.Reference
	switch {
	case typeName != "":
		t := asset.ParseType(typeName)
		if t == asset.TypeUnknown {
			return fmt.Errorf("unknown asset type %q", typeName)
		}
		refs = e.registry.GetAssetsByType(t)
	case tag != "":
		refs = e.registry.GetAssetsByTag(tag)
	case recent > 0:
		refs = e.registry.ListRecent(recent)
	default:
		refs = e.registry.ListAll()
	}

	if len(refs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no assets found")
		return nil
	}

	printReferences(cmd, refs)
	return nil
}

func printReferences(cmd *cobra.Command, refs []asset.Reference) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tPATH\tTAGS")
	for _, ref := range refs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ref.ID, ref.Type, ref.Name, ref.Path, strings.Join(ref.Tags, ","))
	}
	_ = w.Flush()
}
