package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-intake/internal/db"
	"github.com/sells-group/vendor-intake/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS import_sessions (
	id                   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source_kind          TEXT NOT NULL,
	source_name          TEXT NOT NULL DEFAULT '',
	total_lines          INTEGER NOT NULL DEFAULT 0,
	blocks_found         INTEGER NOT NULL DEFAULT 0,
	vendors_extracted    INTEGER NOT NULL DEFAULT 0,
	overall_confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
	low_confidence_count INTEGER NOT NULL DEFAULT 0,
	expected_count       INTEGER,
	warnings             JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vendors (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	session_id TEXT REFERENCES import_sessions(id),
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	logo_url   TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_vendors_session_id ON vendors(session_id);
CREATE INDEX IF NOT EXISTS idx_vendors_name ON vendors(name);
`

// vendorCopyColumns is the COPY column order; it matches vendorArgs.
var vendorCopyColumns = []string{
	"id", "session_id", "name", "address", "phone", "email", "website", "notes", "logo_url", "confidence", "created_at",
}

// Migrate applies the schema in one transaction.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, postgresMigration)
		return err
	})
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, session *model.ImportSession) error {
	args, err := sessionArgsPostgres(session)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, insertSessionPostgres, args...)
	return eris.Wrapf(err, "postgres: insert session %s", session.ID)
}

const insertSessionPostgres = `INSERT INTO import_sessions (id, source_kind, source_name, total_lines, blocks_found,
		vendors_extracted, overall_confidence, low_confidence_count, expected_count, warnings, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING`

func sessionArgsPostgres(session *model.ImportSession) ([]any, error) {
	prepareSession(session)

	warningsJSON, err := json.Marshal(session.Warnings)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal warnings")
	}
	return []any{
		session.ID, string(session.SourceKind), session.SourceName, session.TotalLines, session.BlocksFound,
		session.VendorsExtracted, session.OverallConfidence, session.LowConfidenceCount,
		session.ExpectedCount, warningsJSON, session.CreatedAt,
	}, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.ImportSession, error) {
	var (
		sess       model.ImportSession
		sourceKind string
		expected   int
		warnings   []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM import_sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sourceKind, &sess.SourceName, &sess.TotalLines, &sess.BlocksFound,
			&sess.VendorsExtracted, &sess.OverallConfidence, &sess.LowConfidenceCount, &expected, &warnings, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "session %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get session %s", id)
	}
	sess.SourceKind = model.SourceKind(sourceKind)
	if err := finishSession(&sess, expected, warnings); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal warnings")
	}
	return &sess, nil
}

func (s *PostgresStore) SaveVendor(ctx context.Context, v *model.Vendor) (string, error) {
	if err := ValidateVendor(v); err != nil {
		return "", err
	}
	prepareVendor(v, time.Now().UTC())

	_, err := s.pool.Exec(ctx,
		`INSERT INTO vendors (`+vendorColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		vendorArgs(v)...,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert vendor %s", v.Name)
	}
	return v.ID, nil
}

// SaveVendors bulk-loads vendors with COPY.
func (s *PostgresStore) SaveVendors(ctx context.Context, vs []model.Vendor) ([]string, error) {
	if err := validateAll(vs); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}

	ids, rows := vendorCopyRows(vs)
	n, err := db.CopyFrom(ctx, s.pool, "vendors", vendorCopyColumns, rows)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: save vendors")
	}
	zap.L().Debug("postgres: copied vendors", zap.Int64("rows", n))
	return ids, nil
}

// SaveImport inserts the session and copies its vendors in one transaction.
func (s *PostgresStore) SaveImport(ctx context.Context, session *model.ImportSession, vs []model.Vendor) ([]string, error) {
	if err := validateAll(vs); err != nil {
		return nil, err
	}
	args, err := sessionArgsPostgres(session)
	if err != nil {
		return nil, err
	}
	attachVendors(session.ID, vs)
	ids, rows := vendorCopyRows(vs)

	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertSessionPostgres, args...); err != nil {
			return eris.Wrapf(err, "insert session %s", session.ID)
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"vendors"}, vendorCopyColumns, pgx.CopyFromRows(rows))
		return eris.Wrap(err, "copy vendors")
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: save import")
	}
	return ids, nil
}

func vendorCopyRows(vs []model.Vendor) ([]string, [][]any) {
	now := time.Now().UTC()
	ids := make([]string, len(vs))
	rows := make([][]any, len(vs))
	for i := range vs {
		prepareVendor(&vs[i], now)
		ids[i] = vs[i].ID
		rows[i] = vendorArgs(&vs[i])
	}
	return ids, rows
}

func (s *PostgresStore) GetVendor(ctx context.Context, id string) (*model.Vendor, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectVendorColumns+` FROM vendors WHERE id = $1`, id)
	v, err := scanVendor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "vendor %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get vendor %s", id)
	}
	return v, nil
}

func (s *PostgresStore) ListVendors(ctx context.Context, filter VendorFilter) ([]model.Vendor, error) {
	query := `SELECT ` + selectVendorColumns + ` FROM vendors WHERE ($1 = '' OR session_id = $1)
		ORDER BY created_at, name LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, filter.SessionID, filter.limit(), max(filter.Offset, 0))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list vendors")
	}
	defer rows.Close()

	vendors := []model.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan vendor")
		}
		vendors = append(vendors, *v)
	}
	return vendors, eris.Wrap(rows.Err(), "postgres: list vendors iterate")
}
