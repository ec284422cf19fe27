package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "secreview",
	Short: "secreview - multi-tool security scan orchestration and reporting",
	Long: `secreview runs third-party security scanners (semgrep, trivy, snyk,
checkov, bearer, terrascan, sslscan) against a target, collects their raw
reports and reduces them to a common summary schema.`,
}

var (
	debugMode  bool
	configPath string
)

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Policy config file (default ~/.secreview/config.yaml)")
}
