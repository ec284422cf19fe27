package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Manifest is the append-only audit log of a session. Writes are
// serialized so concurrent runners never interleave lines.
type Manifest struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

func openManifest(dir, name, stamp string) (*Manifest, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_manifest_%s.log", name, stamp))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	return &Manifest{f: f, path: path}, nil
}

func (m *Manifest) Path() string { return m.path }

// Append writes one timestamped line. Errors writing the manifest are
// returned so callers can surface them; the session itself keeps going.
func (m *Manifest) Append(format string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	line := fmt.Sprintf("%s %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	_, err := m.f.WriteString(line)
	return err
}

func (m *Manifest) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.f.Close()
}
