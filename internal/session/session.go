package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// ErrTargetNotFound aborts a session before any tool runs.
var ErrTargetNotFound = errors.New("target not found")

// Session owns the on-disk layout of one review run and collects the
// ScanRuns produced against a single target. Components receive it
// explicitly instead of reaching for globals.
type Session struct {
	Target     string
	OutputRoot string
	StartedAt  time.Time
	Stamp      string // timestamp token shared by every artifact name

	mu       sync.Mutex
	runs     []model.ScanRun
	manifest *Manifest
}

// New validates the target path, creates the scans/, summaries/ and
// logs/ directories under outputRoot and opens the manifest log.
func New(target, outputRoot string) (*Session, error) {
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	return build(target, outputRoot)
}

// NewHost builds a session for a hostname target. Reachability is the
// scanner's business, so no existence check applies.
func NewHost(host, outputRoot string) (*Session, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("%w: empty host", ErrTargetNotFound)
	}
	return build(host, outputRoot)
}

func build(target, outputRoot string) (*Session, error) {
	now := time.Now()
	s := &Session{
		Target:     target,
		OutputRoot: outputRoot,
		StartedAt:  now,
		Stamp:      now.Format("20060102_150405"),
	}
	for _, dir := range []string{s.ScansDir(), s.SummariesDir(), s.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	m, err := openManifest(s.LogsDir(), "session", s.Stamp)
	if err != nil {
		return nil, err
	}
	s.manifest = m
	_ = m.Append("session started target=%s output=%s", target, outputRoot)
	return s, nil
}

func (s *Session) ScansDir() string     { return filepath.Join(s.OutputRoot, "scans") }
func (s *Session) SummariesDir() string { return filepath.Join(s.OutputRoot, "summaries") }
func (s *Session) LogsDir() string      { return filepath.Join(s.OutputRoot, "logs") }

// TargetBase is the basename used in artifact names. A target of "." or
// a trailing slash still yields a usable name.
func (s *Session) TargetBase() string {
	abs, err := filepath.Abs(s.Target)
	if err != nil {
		abs = s.Target
	}
	base := filepath.Base(filepath.Clean(abs))
	if base == "." || base == string(filepath.Separator) {
		base = "target"
	}
	// Hostnames show up as targets for TLS scans; dots would collide
	// with the <base>.<tool>.<ext> naming.
	return strings.ReplaceAll(base, ".", "_")
}

// ArtifactPath returns scans/<target_basename>.<tool>.<ext>.
func (s *Session) ArtifactPath(tool, ext string) string {
	return filepath.Join(s.ScansDir(), fmt.Sprintf("%s.%s.%s", s.TargetBase(), tool, ext))
}

// SummaryPath returns summaries/<tool>_<kind>_<timestamp>.<ext>.
func (s *Session) SummaryPath(tool, kind, ext string) string {
	return filepath.Join(s.SummariesDir(), fmt.Sprintf("%s_%s_%s.%s", tool, kind, s.Stamp, ext))
}

func (s *Session) Manifest() *Manifest { return s.manifest }

// Append records a completed run. Runs arrive in completion order.
func (s *Session) Append(run model.ScanRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
}

// Runs returns the recorded runs in insertion order.
func (s *Session) Runs() []model.ScanRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ScanRun, len(s.runs))
	copy(out, s.runs)
	return out
}

// SetRuns replaces the recorded runs, used after the parse phase
// attaches findings.
func (s *Session) SetRuns(runs []model.ScanRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = runs
}

// Findings merges every run's findings in run order.
func (s *Session) Findings() []model.Finding {
	var out []model.Finding
	for _, r := range s.Runs() {
		out = append(out, r.Findings...)
	}
	return out
}

func (s *Session) Close() error {
	_ = s.manifest.Append("session closed")
	return s.manifest.Close()
}
