package model

import "encoding/json"

type Severity string

const (
	SevCritical Severity = "CRITICAL"
	SevHigh     Severity = "HIGH"
	SevMedium   Severity = "MEDIUM"
	SevLow      Severity = "LOW"
	SevInfo     Severity = "INFO"
	SevUnknown  Severity = "UNKNOWN"
)

var sevRank = map[Severity]int{
	SevCritical: 5,
	SevHigh:     4,
	SevMedium:   3,
	SevLow:      2,
	SevInfo:     1,
	SevUnknown:  0,
}

// Rank orders severities for sorting: CRITICAL highest, UNKNOWN lowest.
func (s Severity) Rank() int { return sevRank[s] }

// Severities lists every severity in descending order.
func Severities() []Severity {
	return []Severity{SevCritical, SevHigh, SevMedium, SevLow, SevInfo, SevUnknown}
}

const (
	// NoFilePath marks findings that are not scoped to a file (e.g. a
	// dependency vulnerability or a TLS protocol issue).
	NoFilePath = "N/A"
	// NoMessage is the sentinel stored when a tool reports no message text.
	NoMessage = "No message"
)

// Finding is one normalized security observation, immutable once built
// from a raw tool record.
type Finding struct {
	Tool      string          `json:"tool"`
	RuleID    string          `json:"rule_id"`
	Severity  Severity        `json:"severity"`
	FilePath  string          `json:"file_path"`
	StartLine int             `json:"line_start"` // 1-based, 0 = unset
	EndLine   int             `json:"line_end"`   // equals StartLine for single-line findings
	Message   string          `json:"message"`
	Raw       json.RawMessage `json:"-"` // originating record, for traceability
}
