package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drhitchen/security-review-tools/internal/aggregate"
	"github.com/drhitchen/security-review-tools/internal/config"
	"github.com/drhitchen/security-review-tools/internal/logging"
	"github.com/drhitchen/security-review-tools/internal/scanner"
	"github.com/drhitchen/security-review-tools/internal/session"
	"github.com/drhitchen/security-review-tools/internal/storage"
	"github.com/drhitchen/security-review-tools/internal/target"
)

var (
	scanTools   string
	scanOutput  string
	scanWorkers int
	scanTimeout time.Duration
	scanTopN    int
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Run the selected scanners against a target and summarize their findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(debugMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if scanWorkers > 0 {
			cfg.Workers = scanWorkers
		}
		if scanTimeout > 0 {
			cfg.ToolTimeout = config.Duration(scanTimeout)
		}
		if scanTopN > 0 {
			cfg.TopRules = scanTopN
		}

		// Setup failures (missing target, unusable output root) are the
		// only non-zero exits; individual tool findings never are.
		sess, err := session.New(args[0], scanOutput)
		if err != nil {
			if errors.Is(err, session.ErrTargetNotFound) {
				return fmt.Errorf("target %q does not exist", args[0])
			}
			return err
		}
		defer sess.Close()

		if profile, err := target.Detect(args[0]); err == nil {
			logger.Infof("target profile: %s", profile)
			_ = sess.Manifest().Append("target profile: %s", profile)
		}

		reg := scanner.NewRegistry(cfg)
		orch := &scanner.Orchestrator{
			Registry: reg,
			Runner:   &scanner.Runner{Log: logger, Timeout: cfg.ToolTimeout.Std()},
			Log:      logger,
			Workers:  cfg.Workers,
		}
		orch.Run(cmd.Context(), sess, splitAndTrim(scanTools))

		written, err := aggregate.WriteSummaries(sess, cfg.TopRules)
		if err != nil {
			logger.Errorw("writing summaries", "error", err)
		}
		for _, p := range written {
			logger.Infof("summary written: %s", p)
		}

		saveHistory(logger, sess)
		printSessionOverview(logger, sess, cfg.TopRules)
		return nil
	},
}

func saveHistory(logger *zap.SugaredLogger, sess *session.Session) {
	db, err := storage.Open(filepath.Join(sess.OutputRoot, "secreview.db"))
	if err != nil {
		logger.Warnw("run history unavailable", "error", err)
		return
	}
	defer db.Close()
	if err := db.SaveSession(sess); err != nil {
		logger.Warnw("could not record run history", "error", err)
	}
}

func printSessionOverview(logger *zap.SugaredLogger, sess *session.Session, topN int) {
	for _, run := range sess.Runs() {
		logger.Infof("%-10s status=%s parse=%s findings=%d", run.Tool, run.Status, run.ParseState, len(run.Findings))
	}
	o := aggregate.BuildOverview(sess.Findings(), topN)
	fmt.Println(aggregate.RenderOverviewText(fmt.Sprintf("Combined findings for %s", sess.Target), o))
}

func init() {
	scanCmd.Flags().StringVarP(&scanTools, "tools", "t", "all", "Comma-separated tool names, or 'all'")
	scanCmd.Flags().StringVarP(&scanOutput, "output-dir", "o", "secreview-out", "Output root for scans/, summaries/ and logs/")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "Concurrent tool runs (default from config)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Per-tool deadline (default from config)")
	scanCmd.Flags().IntVar(&scanTopN, "top", 0, "Top rules listed in overviews (default from config)")
	rootCmd.AddCommand(scanCmd)
}

func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(strings.ToLower(part))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
