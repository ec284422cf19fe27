package adapters

import (
	"fmt"
	"strings"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// MalformedArtifactError marks an artifact the adapter could not parse.
// Callers must treat it differently from "parsed fine, zero findings".
type MalformedArtifactError struct {
	Tool string
	Path string
	Err  error
}

func (e *MalformedArtifactError) Error() string {
	return fmt.Sprintf("malformed %s artifact %s: %v", e.Tool, e.Path, e.Err)
}

func (e *MalformedArtifactError) Unwrap() error { return e.Err }

func malformed(tool, path string, err error) error {
	return &MalformedArtifactError{Tool: tool, Path: path, Err: err}
}

func safeLine(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// lineRange applies the shared rule: a single reported line means
// start == end.
func lineRange(start, end int) (int, int) {
	start, end = safeLine(start), safeLine(end)
	if end == 0 {
		end = start
	}
	return start, end
}

func orNoMessage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.NoMessage
	}
	return s
}

func orNoPath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.NoFilePath
	}
	return s
}

// mapSeverity resolves a tool-native severity through that tool's table.
// Anything outside the table is UNKNOWN, never an error.
func mapSeverity(table map[string]model.Severity, s string) model.Severity {
	if sev, ok := table[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return sev
	}
	return model.SevUnknown
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
