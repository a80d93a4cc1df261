package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps <id>",
	Short: "Show an asset's dependencies",
	Long: `Deps prints the direct dependencies of an asset. Use --reverse for the
assets that depend on it, --transitive for the full closure, and --check for
cycle detection.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().Bool("reverse", false, "show dependents instead of dependencies")
	depsCmd.Flags().Bool("transitive", false, "show the full transitive closure")
	depsCmd.Flags().Bool("check", false, "report whether the asset sits on a dependency cycle")
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	id := args[0]
	if _, ok := e.registry.Reference(id); !ok {
		return fmt.Errorf("unknown asset %q", id)
	}

	if check, _ := cmd.Flags().GetBool("check"); check {
		if e.registry.HasCircularDependency(id) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is on a dependency cycle\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has no dependency cycle\n", id)
		}
		return nil
	}

	var ids []string
	switch {
	case mustBool(cmd, "reverse"):
		ids = e.registry.GetDependents(id)
	case mustBool(cmd, "transitive"):
		ids = e.registry.DependencyTree(id)
	default:
		ids = e.registry.GetDependencies(id)
	}

	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "none")
		return nil
	}
	for _, dep := range ids {
		if ref, ok := e.registry.Reference(dep); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", ref.ID, ref.Type, ref.Name)
		} else {
			// Edge to an asset the registry has never seen.
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(unknown)\n", dep)
		}
	}
	return nil
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
