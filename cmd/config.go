package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vehement/assetdb/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage assetdb configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config to .assetdb/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ".assetdb/config.yaml"
		if cfgFile != "" {
			path = cfgFile
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
