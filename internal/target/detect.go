package target

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind classifies files found under a scan target. The profile is
// informational: it tells the reviewer what the selected tools will
// actually have to chew on.
type Kind string

const (
	Terraform  Kind = "terraform"
	Kubernetes Kind = "kubernetes"
	Dockerfile Kind = "dockerfile"
	Node       Kind = "node"
	Python     Kind = "python"
	Go         Kind = "go"
)

// Profile counts recognized file kinds under root.
type Profile map[Kind]int

// Detect walks root and builds its profile. Hidden directories and the
// usual dependency trees are skipped.
func Detect(root string) (Profile, error) {
	p := Profile{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if k, ok := classify(path, name); ok {
			p[k]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func classify(path, name string) (Kind, bool) {
	switch {
	case strings.HasSuffix(name, ".tf"):
		return Terraform, true
	case name == "Dockerfile" || strings.HasPrefix(name, "Dockerfile."):
		return Dockerfile, true
	case name == "package.json":
		return Node, true
	case name == "requirements.txt" || name == "Pipfile" || name == "pyproject.toml":
		return Python, true
	case name == "go.mod":
		return Go, true
	case strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml"):
		if isKubernetesManifest(path) {
			return Kubernetes, true
		}
	}
	return "", false
}

// isKubernetesManifest peeks at a YAML file for an apiVersion key.
func isKubernetesManifest(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "apiVersion:") {
			return true
		}
	}
	return false
}

// String renders the profile as "kind=count" pairs in a fixed order.
func (p Profile) String() string {
	order := []Kind{Terraform, Kubernetes, Dockerfile, Node, Python, Go}
	var parts []string
	for _, k := range order {
		if n := p[k]; n > 0 {
			parts = append(parts, string(k)+"="+strconv.Itoa(n))
		}
	}
	if len(parts) == 0 {
		return "no recognized project files"
	}
	return strings.Join(parts, " ")
}
