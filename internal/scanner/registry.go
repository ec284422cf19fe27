package scanner

import (
	"os/exec"
	"sort"

	"github.com/drhitchen/security-review-tools/internal/config"
)

// ToolSpec describes how one external scanner is invoked and how its
// exit codes are read. The registry is data; adding a tool is a table
// entry plus an adapter.
type ToolSpec struct {
	Name        string
	Binary      string
	ArtifactExt string
	// Args builds the argument list for one run. artifact is where the
	// tool should write its report (ignored when ReportToStdout).
	Args func(target, artifact string, extra []string) []string
	// FindingsCodes are exit codes that mean "findings present", not
	// failure. Zero is always clean; anything else is a failure.
	FindingsCodes []int
	// ReportToStdout marks tools that only emit their report on stdout;
	// the runner captures it into the artifact file itself.
	ReportToStdout bool
	// ExcludedFromAll keeps a tool out of the "all" alias; it still runs
	// when requested by exact name. Policy, not capability.
	ExcludedFromAll bool
}

// FindingsExit reports whether code is a findings-present exit for this tool.
func (t ToolSpec) FindingsExit(code int) bool {
	for _, c := range t.FindingsCodes {
		if c == code {
			return true
		}
	}
	return false
}

func defaultSpecs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "semgrep",
			Binary:      "semgrep",
			ArtifactExt: "json",
			Args: func(target, artifact string, extra []string) []string {
				args := []string{"scan", "--config=auto", "--json", "--output", artifact}
				args = append(args, extra...)
				return append(args, target)
			},
			FindingsCodes: []int{1},
		},
		{
			Name:        "trivy",
			Binary:      "trivy",
			ArtifactExt: "json",
			Args: func(target, artifact string, extra []string) []string {
				args := []string{"fs", "--scanners", "vuln,misconfig,secret", "-f", "json", "-o", artifact, "-q"}
				args = append(args, extra...)
				return append(args, target)
			},
			FindingsCodes: []int{1},
		},
		{
			Name:        "snyk",
			Binary:      "snyk",
			ArtifactExt: "json",
			Args: func(target, artifact string, extra []string) []string {
				args := []string{"test", "--json-file-output=" + artifact}
				args = append(args, extra...)
				return append(args, target)
			},
			FindingsCodes: []int{1},
		},
		{
			// Checkov only writes the JSON report to stdout.
			Name:           "checkov",
			Binary:         "checkov",
			ArtifactExt:    "json",
			ReportToStdout: true,
			Args: func(target, artifact string, extra []string) []string {
				args := []string{"-d", target, "-o", "json", "--quiet"}
				return append(args, extra...)
			},
			FindingsCodes: []int{1},
		},
		{
			Name:        "bearer",
			Binary:      "bearer",
			ArtifactExt: "json",
			Args: func(target, artifact string, extra []string) []string {
				args := []string{"scan", "--format", "json", "--output", artifact}
				args = append(args, extra...)
				return append(args, target)
			},
			FindingsCodes: []int{1},
		},
		{
			// Terrascan exits 3 on violations, 5 on violations plus scan
			// errors; both still carry a usable report.
			Name:           "terrascan",
			Binary:         "terrascan",
			ArtifactExt:    "json",
			ReportToStdout: true,
			Args: func(target, artifact string, extra []string) []string {
				args := []string{"scan", "-d", target, "-o", "json"}
				return append(args, extra...)
			},
			FindingsCodes:   []int{3, 5},
			ExcludedFromAll: true,
		},
	}
}

// SSLScanSpec is the host-facing TLS scanner. It is not part of the
// filesystem registry: its target is a hostname, so the "all" alias and
// Resolve never see it. The tls command drives it directly.
func SSLScanSpec() ToolSpec {
	return ToolSpec{
		Name:           "sslscan",
		Binary:         "sslscan",
		ArtifactExt:    "txt",
		ReportToStdout: true,
		Args: func(target, artifact string, extra []string) []string {
			args := []string{"--no-colour"}
			args = append(args, extra...)
			return append(args, target)
		},
	}
}

// Registry is the closed set of repository scanners with the session's
// policy applied.
type Registry struct {
	specs  []ToolSpec
	byName map[string]ToolSpec
}

// NewRegistry builds the registry and applies config policy: per-tool
// extra args and the excluded-from-all list.
func NewRegistry(cfg *config.Config) *Registry {
	specs := defaultSpecs()

	if cfg != nil {
		excluded := map[string]bool{}
		for _, name := range cfg.ExcludedFromAll {
			excluded[name] = true
		}
		for i := range specs {
			specs[i].ExcludedFromAll = excluded[specs[i].Name]
			if pol, ok := cfg.Tools[specs[i].Name]; ok && len(pol.ExtraArgs) > 0 {
				base := specs[i].Args
				extraArgs := pol.ExtraArgs
				specs[i].Args = func(target, artifact string, extra []string) []string {
					return base(target, artifact, append(append([]string{}, extraArgs...), extra...))
				}
			}
		}
	}

	byName := make(map[string]ToolSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	return &Registry{specs: specs, byName: byName}
}

// Spec looks a tool up by name.
func (r *Registry) Spec(name string) (ToolSpec, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Names lists every registered tool in registry order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s.Name)
	}
	return out
}

// Resolve expands the "all" alias, de-duplicates preserving first
// occurrence, and splits off unknown names for the caller to warn about.
func (r *Registry) Resolve(tokens []string) (resolved, unknown []string) {
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			resolved = append(resolved, name)
		}
	}
	for _, tok := range tokens {
		if tok == "all" {
			for _, s := range r.specs {
				if !s.ExcludedFromAll {
					add(s.Name)
				}
			}
			continue
		}
		if _, ok := r.byName[tok]; ok {
			add(tok)
		} else {
			unknown = append(unknown, tok)
		}
	}
	return resolved, unknown
}

// Available reports which registered binaries resolve on PATH, for the
// tools command.
func (r *Registry) Available() map[string]bool {
	out := make(map[string]bool, len(r.specs))
	for _, s := range r.specs {
		_, err := exec.LookPath(s.Binary)
		out[s.Name] = err == nil
	}
	return out
}

// SortedNames is Names in lexicographic order, for stable listings.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
