package scanner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drhitchen/security-review-tools/internal/model"
	"github.com/drhitchen/security-review-tools/internal/session"
)

// ErrToolNotAvailable means the tool's binary does not resolve on PATH.
var ErrToolNotAvailable = errors.New("tool binary not available")

// Runner executes exactly one external scanner per call. A tool exiting
// with its "findings present" code is a successful run, never an error.
type Runner struct {
	Log     *zap.SugaredLogger
	Timeout time.Duration
	// Console sinks, overridable in tests. Tool output is always teed to
	// both the console and the artifact files; losing either breaks audit.
	Stdout io.Writer
	Stderr io.Writer
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Run invokes spec against the session target and returns the ScanRun.
// Failures are recorded on the run, not returned: one tool going down
// must not take the session with it.
func (r *Runner) Run(ctx context.Context, sess *session.Session, spec ToolSpec) model.ScanRun {
	run := model.ScanRun{
		Tool:       spec.Name,
		Target:     sess.Target,
		StartedAt:  time.Now(),
		Status:     model.StatusNotRun,
		ParseState: model.ParseNotParsed,
	}
	man := sess.Manifest()

	// Preflight before any side effect.
	if _, err := exec.LookPath(spec.Binary); err != nil {
		run.Status = model.StatusSkippedMissing
		r.Log.Warnf("%s: %v, skipping (%v)", spec.Name, ErrToolNotAvailable, err)
		_ = man.Append("tool=%s skipped: binary %q not found", spec.Name, spec.Binary)
		return run
	}

	artifact := sess.ArtifactPath(spec.Name, spec.ArtifactExt)
	capture := sess.ArtifactPath(spec.Name, "out")

	captureFile, err := os.Create(capture)
	if err != nil {
		run.Status = model.StatusFailed
		r.Log.Errorw("create capture file", "tool", spec.Name, "error", err)
		_ = man.Append("tool=%s failed: create capture file: %v", spec.Name, err)
		return run
	}
	defer captureFile.Close()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := spec.Args(sess.Target, artifact, nil)
	cmd := exec.CommandContext(ctx, spec.Binary, args...)

	if spec.ReportToStdout {
		// The report only exists on stdout; capture it into the artifact
		// while still echoing to the console.
		artifactFile, err := os.Create(artifact)
		if err != nil {
			run.Status = model.StatusFailed
			r.Log.Errorw("create artifact file", "tool", spec.Name, "error", err)
			_ = man.Append("tool=%s failed: create artifact file: %v", spec.Name, err)
			return run
		}
		defer artifactFile.Close()
		cmd.Stdout = io.MultiWriter(artifactFile, r.stdout())
		cmd.Stderr = io.MultiWriter(captureFile, r.stderr())
	} else {
		tee := io.MultiWriter(captureFile, r.stdout())
		cmd.Stdout = tee
		cmd.Stderr = io.MultiWriter(captureFile, r.stderr())
	}

	r.Log.Infof("running %s %v", spec.Binary, args)
	_ = man.Append("tool=%s started: %s %v", spec.Name, spec.Binary, args)

	runErr := cmd.Run()
	run.Duration = time.Since(run.StartedAt)

	switch {
	case runErr == nil:
		run.ExitCode = 0
		run.ExitClass = model.ExitClean
		run.Status = model.StatusRanOK
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			run.ExitCode = exitErr.ExitCode()
			if ctx.Err() != nil {
				run.ExitClass = model.ExitFailure
				run.Status = model.StatusFailed
				r.Log.Errorw("tool timed out", "tool", spec.Name, "timeout", r.Timeout)
				_ = man.Append("tool=%s failed: timed out after %s", spec.Name, r.Timeout)
			} else if spec.FindingsExit(run.ExitCode) {
				run.ExitClass = model.ExitFindings
				run.Status = model.StatusRanWithFindings
			} else {
				run.ExitClass = model.ExitFailure
				run.Status = model.StatusFailed
				r.Log.Errorw("tool failed", "tool", spec.Name, "exit", run.ExitCode)
				_ = man.Append("tool=%s failed: exit code %d", spec.Name, run.ExitCode)
			}
		} else {
			run.ExitCode = -1
			run.ExitClass = model.ExitFailure
			run.Status = model.StatusFailed
			r.Log.Errorw("tool could not be started", "tool", spec.Name, "error", runErr)
			_ = man.Append("tool=%s failed: %v", spec.Name, runErr)
		}
	}

	run.RawArtifactPaths = collectArtifacts(artifact, capture)
	_ = man.Append("tool=%s finished: exit=%d class=%s status=%s artifacts=%v",
		spec.Name, run.ExitCode, run.ExitClass, run.Status, run.RawArtifactPaths)
	return run
}

// collectArtifacts keeps only files the run actually produced, plus any
// sibling SARIF report some tools drop next to the native one.
func collectArtifacts(artifact, capture string) []string {
	var out []string
	for _, p := range []string{artifact, sarifSibling(artifact), capture} {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

func sarifSibling(artifact string) string {
	if filepath.Ext(artifact) != ".json" {
		return ""
	}
	return strings.TrimSuffix(artifact, ".json") + ".sarif"
}
