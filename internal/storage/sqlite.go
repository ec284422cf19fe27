package storage

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/drhitchen/security-review-tools/internal/model"
	"github.com/drhitchen/security-review-tools/internal/session"
)

// DB is the run-history index backed by SQLite. It is a cache over the
// session directories, never the source of truth: the filesystem layout
// under the output root remains authoritative.
type DB struct {
	conn *sql.DB
}

// Open opens (and creates if missing) the history DB at path.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db := &DB{conn: c}
	if err := db.createSchema(); err != nil {
		c.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) createSchema() error {
	_, err := db.conn.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  session    TEXT NOT NULL,          -- session stamp
  tool       TEXT NOT NULL,
  target     TEXT,
  started_at TEXT,                   -- RFC3339
  exit_code  INTEGER,
  status     TEXT,
  parse_state TEXT,
  findings   INTEGER,
  PRIMARY KEY (session, tool)
);

CREATE TABLE IF NOT EXISTS findings (
  session    TEXT NOT NULL,
  tool       TEXT NOT NULL,
  rule_id    TEXT,
  severity   TEXT,
  file_path  TEXT,
  line_start INTEGER,
  line_end   INTEGER,
  message    TEXT
);

CREATE INDEX IF NOT EXISTS idx_findings_session ON findings(session);
CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule_id);
`)
	return err
}

// SaveSession records every run of the session plus its findings.
func (db *DB) SaveSession(sess *session.Session) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	runStmt, err := tx.Prepare(`
		INSERT INTO runs (session, tool, target, started_at, exit_code, status, parse_state, findings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, tool) DO UPDATE SET
		  exit_code=excluded.exit_code, status=excluded.status,
		  parse_state=excluded.parse_state, findings=excluded.findings`)
	if err != nil {
		return err
	}
	defer runStmt.Close()

	// Re-saving a session rewrites its findings.
	if _, err := tx.Exec(`DELETE FROM findings WHERE session = ?`, sess.Stamp); err != nil {
		return err
	}

	findingStmt, err := tx.Prepare(`
		INSERT INTO findings (session, tool, rule_id, severity, file_path, line_start, line_end, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer findingStmt.Close()

	for _, run := range sess.Runs() {
		if _, err := runStmt.Exec(
			sess.Stamp,
			run.Tool,
			run.Target,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.ExitCode,
			string(run.Status),
			string(run.ParseState),
			len(run.Findings),
		); err != nil {
			return err
		}
		for _, f := range run.Findings {
			if _, err := findingStmt.Exec(
				sess.Stamp, run.Tool, f.RuleID, string(f.Severity),
				f.FilePath, f.StartLine, f.EndLine, f.Message,
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// RunRow is a listing row for run history.
type RunRow struct {
	Session    string
	Tool       string
	Target     string
	StartedAt  time.Time
	ExitCode   int
	Status     model.RunStatus
	ParseState model.ParseState
	Findings   int
}

// ListRuns returns run history, newest session first, registry order
// within a session.
func (db *DB) ListRuns() ([]RunRow, error) {
	rows, err := db.conn.Query(`
		SELECT session, tool, target, started_at, exit_code, status, parse_state, findings
		FROM runs ORDER BY session DESC, started_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var ts, status, parseState string
		if err := rows.Scan(&r.Session, &r.Tool, &r.Target, &ts, &r.ExitCode, &status, &parseState, &r.Findings); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, ts)
		r.Status = model.RunStatus(status)
		r.ParseState = model.ParseState(parseState)
		out = append(out, r)
	}
	return out, rows.Err()
}
