package sarif

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drhitchen/security-review-tools/internal/model"
)

type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Result struct {
	RuleID    string     `json:"ruleId"`
	Message   Message    `json:"message"`
	Level     string     `json:"level"` // error, warning, note
	Locations []Location `json:"locations"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}

// Export writes the merged findings as a SARIF 2.1.0 file at outPath.
func Export(findings []model.Finding, outPath, toolName, toolVersion string) error {
	results := make([]Result, 0, len(findings))
	for _, f := range findings {
		fileURI := toURI(f.FilePath)
		if strings.TrimSpace(fileURI) == "" || fileURI == model.NoFilePath {
			fileURI = "UNKNOWN"
		}
		start := f.StartLine
		if start <= 0 {
			start = 1
		}
		end := f.EndLine
		if end < start {
			end = start
		}

		results = append(results, Result{
			RuleID: f.RuleID,
			Level:  sevToLevel(f.Severity),
			Message: Message{
				Text: strings.TrimSpace(f.Message),
			},
			Locations: []Location{
				{
					PhysicalLocation: PhysicalLocation{
						ArtifactLocation: ArtifactLocation{
							URI: fileURI,
						},
						Region: Region{
							StartLine: start,
							EndLine:   end,
						},
					},
				},
			},
		})
	}

	log := Log{
		Version: "2.1.0",
		// RTM schema recognized by GitHub/VSCode.
		Schema: "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    toolName,
						Version: toolVersion,
					},
				},
				Results: results,
			},
		},
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	return nil
}

func sevToLevel(s model.Severity) string {
	switch s {
	case model.SevCritical, model.SevHigh:
		return "error"
	case model.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
