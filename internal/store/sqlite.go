package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/vendor-intake/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS import_sessions (
	id                   TEXT PRIMARY KEY,
	source_kind          TEXT NOT NULL,
	source_name          TEXT NOT NULL DEFAULT '',
	total_lines          INTEGER NOT NULL DEFAULT 0,
	blocks_found         INTEGER NOT NULL DEFAULT 0,
	vendors_extracted    INTEGER NOT NULL DEFAULT 0,
	overall_confidence   REAL NOT NULL DEFAULT 0,
	low_confidence_count INTEGER NOT NULL DEFAULT 0,
	expected_count       INTEGER,
	warnings             TEXT NOT NULL DEFAULT '[]',
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS vendors (
	id         TEXT PRIMARY KEY,
	session_id TEXT REFERENCES import_sessions(id),
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	logo_url   TEXT NOT NULL DEFAULT '',
	confidence REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vendors_session_id ON vendors(session_id);
CREATE INDEX IF NOT EXISTS idx_vendors_name ON vendors(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSession(ctx context.Context, session *model.ImportSession) error {
	return insertSessionSQLite(ctx, s.db, session)
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.ImportSession, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM import_sessions WHERE id = ?`, id)

	var (
		sess     model.ImportSession
		expected int
		warnings string
	)
	err := row.Scan(&sess.ID, &sess.SourceKind, &sess.SourceName, &sess.TotalLines, &sess.BlocksFound,
		&sess.VendorsExtracted, &sess.OverallConfidence, &sess.LowConfidenceCount, &expected, &warnings, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "session %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get session %s", id)
	}
	if err := finishSession(&sess, expected, []byte(warnings)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal warnings")
	}
	return &sess, nil
}

func (s *SQLiteStore) SaveVendor(ctx context.Context, v *model.Vendor) (string, error) {
	if err := ValidateVendor(v); err != nil {
		return "", err
	}
	prepareVendor(v, time.Now().UTC())

	if _, err := s.db.ExecContext(ctx, insertVendorSQLite, vendorArgs(v)...); err != nil {
		return "", eris.Wrapf(err, "sqlite: insert vendor %s", v.Name)
	}
	return v.ID, nil
}

func (s *SQLiteStore) SaveVendors(ctx context.Context, vs []model.Vendor) ([]string, error) {
	if err := validateAll(vs); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	ids, err := insertVendorsSQLite(ctx, tx, vs)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit vendors")
	}
	return ids, nil
}

func (s *SQLiteStore) SaveImport(ctx context.Context, session *model.ImportSession, vs []model.Vendor) ([]string, error) {
	if err := validateAll(vs); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertSessionSQLite(ctx, tx, session); err != nil {
		return nil, err
	}
	attachVendors(session.ID, vs)

	var ids []string
	if len(vs) > 0 {
		if ids, err = insertVendorsSQLite(ctx, tx, vs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: commit import %s", session.ID)
	}
	return ids, nil
}

func (s *SQLiteStore) GetVendor(ctx context.Context, id string) (*model.Vendor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectVendorColumns+` FROM vendors WHERE id = ?`, id)
	v, err := scanVendor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "vendor %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get vendor %s", id)
	}
	return v, nil
}

func (s *SQLiteStore) ListVendors(ctx context.Context, filter VendorFilter) ([]model.Vendor, error) {
	query := `SELECT ` + selectVendorColumns + ` FROM vendors WHERE 1=1`
	var args []any

	if filter.SessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, filter.SessionID)
	}
	query += ` ORDER BY created_at, name LIMIT ?`
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list vendors")
	}
	defer rows.Close() //nolint:errcheck

	vendors := []model.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan vendor")
		}
		vendors = append(vendors, *v)
	}
	return vendors, eris.Wrap(rows.Err(), "sqlite: list vendors iterate")
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSessionSQLite(ctx context.Context, ex sqlExecer, session *model.ImportSession) error {
	prepareSession(session)

	warningsJSON, err := json.Marshal(session.Warnings)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal warnings")
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO import_sessions (id, source_kind, source_name, total_lines, blocks_found, vendors_extracted,
			overall_confidence, low_confidence_count, expected_count, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		session.ID, string(session.SourceKind), session.SourceName, session.TotalLines, session.BlocksFound,
		session.VendorsExtracted, session.OverallConfidence, session.LowConfidenceCount,
		nullInt(session.ExpectedCount), string(warningsJSON), session.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert session %s", session.ID)
}

func insertVendorsSQLite(ctx context.Context, tx *sql.Tx, vs []model.Vendor) ([]string, error) {
	stmt, err := tx.PrepareContext(ctx, insertVendorSQLite)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare insert vendor")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	ids := make([]string, len(vs))
	for i := range vs {
		prepareVendor(&vs[i], now)
		if _, err := stmt.ExecContext(ctx, vendorArgs(&vs[i])...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert vendor %s", vs[i].Name)
		}
		ids[i] = vs[i].ID
	}
	return ids, nil
}

const insertVendorSQLite = `INSERT INTO vendors (` + vendorColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
