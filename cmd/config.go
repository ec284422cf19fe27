package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drhitchen/security-review-tools/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the policy config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default policy config to ~/.secreview/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fmt.Printf("excluded_from_all: %v\n", cfg.ExcludedFromAll)
		fmt.Printf("workers:           %d\n", cfg.Workers)
		fmt.Printf("top_rules:         %d\n", cfg.TopRules)
		fmt.Printf("tool_timeout:      %s\n", cfg.ToolTimeout.Std())
		for name, pol := range cfg.Tools {
			fmt.Printf("tools.%s.extra_args: %v\n", name, pol.ExtraArgs)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
