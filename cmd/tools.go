package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drhitchen/security-review-tools/internal/config"
	"github.com/drhitchen/security-review-tools/internal/scanner"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered scanners and whether their binaries are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		reg := scanner.NewRegistry(cfg)
		avail := reg.Available()
		for _, name := range reg.SortedNames() {
			spec, _ := reg.Spec(name)
			status := "missing"
			if avail[name] {
				status = "installed"
			}
			note := ""
			if spec.ExcludedFromAll {
				note = " (not part of 'all', request by name)"
			}
			fmt.Printf("  %-10s %-10s%s\n", name, status, note)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
