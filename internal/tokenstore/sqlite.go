package tokenstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps credentials in a single-table SQLite database. WAL mode
// with a busy timeout tolerates the host process opening the same file from
// a tooling sidecar.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and ensures the schema.
func NewSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open token db: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate token db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tokens (
		project_key TEXT PRIMARY KEY,
		auth        TEXT NOT NULL,
		refresh     TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load retrieves credentials for the project pairing.
func (s *SQLiteStore) Load(appID, versionID string) (Credentials, bool, error) {
	row := s.db.QueryRow(
		`SELECT auth, refresh FROM tokens WHERE project_key = ?`,
		Key(appID, versionID),
	)
	var creds Credentials
	switch err := row.Scan(&creds.Auth, &creds.Refresh); err {
	case nil:
		return creds, true, nil
	case sql.ErrNoRows:
		return Credentials{}, false, nil
	default:
		return Credentials{}, false, fmt.Errorf("load tokens: %w", err)
	}
}

// Save upserts credentials for the project pairing.
func (s *SQLiteStore) Save(appID, versionID string, creds Credentials) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO tokens (project_key, auth, refresh, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(project_key) DO UPDATE SET
			auth = excluded.auth,
			refresh = excluded.refresh,
			updated_at = excluded.updated_at`,
		Key(appID, versionID), creds.Auth, creds.Refresh, now,
	)
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
