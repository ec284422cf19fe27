package model

import "time"

// RunStatus is the terminal state of one tool execution.
type RunStatus string

const (
	StatusNotRun          RunStatus = "NOT_RUN"
	StatusSkippedMissing  RunStatus = "SKIPPED_MISSING_TOOL"
	StatusRanOK           RunStatus = "RAN_OK"
	StatusRanWithFindings RunStatus = "RAN_WITH_FINDINGS"
	StatusFailed          RunStatus = "FAILED"
)

// ExitClass is the three-way classification of a tool's exit code. Many
// scanners exit non-zero purely because findings exist, so a binary
// ok/error split would misreport them.
type ExitClass int

const (
	ExitClean ExitClass = iota
	ExitFindings
	ExitFailure
)

func (c ExitClass) String() string {
	switch c {
	case ExitClean:
		return "clean"
	case ExitFindings:
		return "findings"
	default:
		return "failure"
	}
}

// ParseState records whether the run's raw artifacts could be summarized.
// MALFORMED is deliberately distinct from PARSED-with-zero-findings, and
// NO_ARTIFACT distinct from both: the tool left nothing to read at all.
type ParseState string

const (
	ParseNotParsed  ParseState = "NOT_PARSED"
	ParseOK         ParseState = "PARSED"
	ParseMalformed  ParseState = "MALFORMED"
	ParseNoArtifact ParseState = "NO_ARTIFACT"
)

// ScanRun is the record of one tool invocation against one target.
type ScanRun struct {
	Tool             string        `json:"tool"`
	Target           string        `json:"target"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	RawArtifactPaths []string      `json:"raw_artifact_paths"`
	ExitCode         int           `json:"exit_code"`
	ExitClass        ExitClass     `json:"exit_class"`
	Status           RunStatus     `json:"status"`
	ParseState       ParseState    `json:"parse_state"`
	ParseError       string        `json:"parse_error,omitempty"`
	Findings         []Finding     `json:"findings,omitempty"`
}

// Terminal reports whether the run reached a final state.
func (r *ScanRun) Terminal() bool {
	switch r.Status {
	case StatusSkippedMissing, StatusRanOK, StatusRanWithFindings, StatusFailed:
		return true
	}
	return false
}
