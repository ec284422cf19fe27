package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drhitchen/security-review-tools/internal/adapters"
	"github.com/drhitchen/security-review-tools/internal/aggregate"
	"github.com/drhitchen/security-review-tools/internal/config"
	"github.com/drhitchen/security-review-tools/internal/logging"
	"github.com/drhitchen/security-review-tools/internal/model"
	"github.com/drhitchen/security-review-tools/internal/scanner"
	"github.com/drhitchen/security-review-tools/internal/session"
)

var tlsOutput string

// tls drives sslscan against a hostname. It goes through the same
// runner, adapter and summary pipeline as the repository scanners; only
// the target kind differs, which is why sslscan sits outside the "all"
// bundle.
var tlsCmd = &cobra.Command{
	Use:   "tls [host]",
	Short: "Scan a host's TLS configuration with sslscan and summarize it",
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

		sess, err := session.NewHost(args[0], tlsOutput)
		if err != nil {
			return err
		}
		defer sess.Close()

		runner := &scanner.Runner{Log: logger, Timeout: cfg.ToolTimeout.Std()}
		run := runner.Run(cmd.Context(), sess, scanner.SSLScanSpec())

		switch run.Status {
		case model.StatusRanOK, model.StatusRanWithFindings:
			findings, err := adapters.Parse(run.Tool, run.RawArtifactPaths)
			if err != nil {
				run.ParseState = model.ParseMalformed
				if errors.Is(err, adapters.ErrNoArtifact) {
					run.ParseState = model.ParseNoArtifact
				}
				run.ParseError = err.Error()
				logger.Errorw("could not summarize sslscan output", "error", err)
				_ = sess.Manifest().Append("tool=sslscan could not summarize: %v", err)
			} else {
				run.ParseState = model.ParseOK
				run.Findings = findings
			}
		}
		sess.Append(run)

		written, err := aggregate.WriteSummaries(sess, cfg.TopRules)
		if err != nil {
			logger.Errorw("writing summaries", "error", err)
		}
		for _, p := range written {
			logger.Infof("summary written: %s", p)
		}

		printSessionOverview(logger, sess, cfg.TopRules)
		return nil
	},
}

func init() {
	tlsCmd.Flags().StringVarP(&tlsOutput, "output-dir", "o", "secreview-out", "Output root for scans/, summaries/ and logs/")
	rootCmd.AddCommand(tlsCmd)
}
