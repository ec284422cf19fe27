package scanner

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/drhitchen/security-review-tools/internal/adapters"
	"github.com/drhitchen/security-review-tools/internal/model"
	"github.com/drhitchen/security-review-tools/internal/session"
)

// Orchestrator coordinates one session: resolve tool names, run each
// tool through the Runner, then summarize completed runs through their
// adapters. Aggregation never starts against a partially-complete
// session; every run reaches a terminal status first.
type Orchestrator struct {
	Registry *Registry
	Runner   *Runner
	Log      *zap.SugaredLogger
	// Workers caps concurrent tool runs. 1 keeps the simpler sequential
	// behavior; the tools themselves are heavy enough that more rarely pays.
	Workers int
}

// Run executes the requested tools against the session target. Unknown
// names and individual tool failures are recorded and skipped; nothing
// here aborts the other tools.
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session, tokens []string) {
	man := sess.Manifest()
	resolved, unknown := o.Registry.Resolve(tokens)
	for _, name := range unknown {
		o.Log.Warnf("unknown tool %q, skipping", name)
		_ = man.Append("unknown tool %q skipped", name)
	}
	if len(resolved) == 0 {
		o.Log.Warn("no valid tools selected, nothing to run")
		_ = man.Append("no valid tools selected")
		return
	}
	_ = man.Append("resolved tools: %v", resolved)

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(resolved) {
		workers = len(resolved)
	}

	jobs := make(chan ToolSpec)
	results := make(chan model.ScanRun, len(resolved))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range jobs {
				results <- o.Runner.Run(ctx, sess, spec)
			}
		}()
	}
	for _, name := range resolved {
		spec, _ := o.Registry.Spec(name)
		jobs <- spec
	}
	close(jobs)
	wg.Wait()
	close(results)

	// Runs land in completion order; the session keeps that order.
	for run := range results {
		sess.Append(run)
	}

	o.summarize(sess)
}

// summarize invokes each completed run's adapter. A malformed artifact
// is a distinct "could not summarize" state, never silently treated as
// zero findings.
func (o *Orchestrator) summarize(sess *session.Session) {
	man := sess.Manifest()
	runs := sess.Runs()
	for i := range runs {
		run := &runs[i]
		if !run.Terminal() {
			continue
		}
		switch run.Status {
		case model.StatusRanOK, model.StatusRanWithFindings:
		default:
			continue
		}

		findings, err := adapters.Parse(run.Tool, run.RawArtifactPaths)
		if err != nil {
			run.ParseError = err.Error()
			if errors.Is(err, adapters.ErrNoArtifact) {
				run.ParseState = model.ParseNoArtifact
				o.Log.Errorw("no artifact to summarize", "tool", run.Tool, "error", err)
				_ = man.Append("tool=%s no artifact to summarize: %v", run.Tool, err)
			} else {
				run.ParseState = model.ParseMalformed
				o.Log.Errorw("could not summarize artifact", "tool", run.Tool, "error", err)
				_ = man.Append("tool=%s could not summarize: %v", run.Tool, err)
			}
			continue
		}
		run.ParseState = model.ParseOK
		run.Findings = findings
		_ = man.Append("tool=%s summarized: %d findings", run.Tool, len(findings))
	}
	sess.SetRuns(runs)
}
