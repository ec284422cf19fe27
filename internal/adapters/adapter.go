package adapters

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// ErrNoArtifact means the run left nothing the adapter could read. It
// is not a parse failure; the tool simply produced no report.
var ErrNoArtifact = errors.New("no parseable artifact")

// ParseFunc turns one raw artifact file into normalized findings.
// Adapters are pure: no side effects beyond reading the file.
type ParseFunc func(path string) ([]model.Finding, error)

var native = map[string]ParseFunc{
	"semgrep":   ParseSemgrepFile,
	"trivy":     ParseTrivyFile,
	"snyk":      ParseSnykFile,
	"checkov":   ParseCheckovFile,
	"bearer":    ParseBearerFile,
	"terrascan": ParseTerrascanFile,
	"sslscan":   ParseSSLScanFile,
}

// Supported reports whether an adapter exists for the tool.
func Supported(tool string) bool {
	_, ok := native[tool]
	return ok
}

// Parse summarizes a run's raw artifacts. A tool may leave both a native
// report and a SARIF one; whichever is present is parsed, and both yield
// equivalent findings, so consumers never care which format survived.
// Console capture files (.out) are skipped.
func Parse(tool string, artifactPaths []string) ([]model.Finding, error) {
	var sarifPath string
	for _, p := range artifactPaths {
		switch strings.TrimPrefix(filepath.Ext(p), ".") {
		case "out", "log":
			continue
		case "sarif":
			sarifPath = p
		default:
			fn, ok := native[tool]
			if !ok {
				return nil, fmt.Errorf("no adapter registered for tool %q", tool)
			}
			return fn(p)
		}
	}
	if sarifPath != "" {
		return ParseSARIFFile(tool, sarifPath)
	}
	return nil, fmt.Errorf("%w for tool %q", ErrNoArtifact, tool)
}
