package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drhitchen/security-review-tools/internal/adapters"
	"github.com/drhitchen/security-review-tools/internal/aggregate"
	"github.com/drhitchen/security-review-tools/internal/logging"
	"github.com/drhitchen/security-review-tools/internal/model"
	"github.com/drhitchen/security-review-tools/internal/storage"
)

var (
	reportOutput string
	reportTopN   int
	reportCSV    bool
)

// report recomputes summaries from the raw artifacts already on disk.
// Summaries are a pure function of the findings, so this is always safe
// to re-run.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Recompute summaries from a previous scan's raw artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(debugMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync()

		scansDir := filepath.Join(reportOutput, "scans")
		entries, err := os.ReadDir(scansDir)
		if err != nil {
			return fmt.Errorf("no scan artifacts under %s: %w", reportOutput, err)
		}

		findings := collectFindings(logger, scansDir, entries)

		if hist, err := storage.Open(filepath.Join(reportOutput, "secreview.db")); err == nil {
			defer hist.Close()
			if rows, err := hist.ListRuns(); err == nil && len(rows) > 0 {
				fmt.Println("Run history:")
				for _, r := range rows {
					fmt.Printf("  %s  %-10s %-22s parse=%-10s findings=%d\n",
						r.Session, r.Tool, r.Status, r.ParseState, r.Findings)
				}
				fmt.Println()
			}
		}

		if reportCSV {
			fmt.Print(aggregate.RenderCSV(aggregate.Table(findings)))
			return nil
		}
		o := aggregate.BuildOverview(findings, reportTopN)
		fmt.Print(aggregate.RenderOverviewText(fmt.Sprintf("Findings under %s", reportOutput), o))
		return nil
	},
}

// collectFindings re-parses the raw artifacts under scans/. A run may
// have left several files for one tool (native report, SARIF sibling,
// console capture); they are grouped per tool and handed to the adapter
// as one set, the same way the scan-time parse phase sees them, so a
// finding present in two formats is still counted once.
func collectFindings(logger *zap.SugaredLogger, scansDir string, entries []os.DirEntry) []model.Finding {
	var tools []string
	groups := map[string][]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tool, ok := toolFromArtifactName(e.Name())
		if !ok || !adapters.Supported(tool) {
			continue
		}
		if _, seen := groups[tool]; !seen {
			tools = append(tools, tool)
		}
		groups[tool] = append(groups[tool], filepath.Join(scansDir, e.Name()))
	}

	var findings []model.Finding
	for _, tool := range tools {
		fs, err := adapters.Parse(tool, groups[tool])
		if err != nil {
			logger.Warnw("could not summarize artifacts", "tool", tool, "error", err)
			continue
		}
		logger.Debugf("%s: %d findings from %d artifacts", tool, len(fs), len(groups[tool]))
		findings = append(findings, fs...)
	}
	return findings
}

// toolFromArtifactName extracts the tool token from the
// <target_basename>.<tool>.<ext> artifact naming convention. Console
// captures (.out) are not summary inputs.
func toolFromArtifactName(name string) (string, bool) {
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return "", false
	}
	ext := parts[len(parts)-1]
	if ext == "out" || ext == "log" {
		return "", false
	}
	return parts[len(parts)-2], true
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output-dir", "o", "secreview-out", "Output root of a previous scan")
	reportCmd.Flags().IntVar(&reportTopN, "top", 0, "Top rules listed in the overview")
	reportCmd.Flags().BoolVar(&reportCSV, "csv", false, "Emit the detailed CSV table instead of the overview")
	rootCmd.AddCommand(reportCmd)
}
