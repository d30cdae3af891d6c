package register

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/rhm-kanzlei/posteingang/internal/common"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS case_register (
	stem        TEXT PRIMARY KEY,
	caseworker  TEXT NOT NULL DEFAULT '',
	label       TEXT NOT NULL DEFAULT '',
	opponent    TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL DEFAULT '',
	updated_at  TEXT NOT NULL
)`

// Store persists the case register. The DSN picks the backend: postgres://
// URLs open a pgx pool, everything else is a SQLite file (":memory:"
// included). Merges are single-writer; readers see pre- or post-merge
// state, never a partial write, because the merge runs in one transaction.
type Store struct {
	db     *sql.DB
	pool   *pgxpool.Pool // nil for SQLite
	policy MergePolicy
	logger *slog.Logger

	writeMu sync.Mutex
}

// Open connects the register store and ensures its schema.
func Open(ctx context.Context, cfg common.DatabaseConfig, policy MergePolicy, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{policy: policy, logger: logger}

	if isPostgresDSN(cfg.DSN) {
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "posteingang"
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
		}

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("register.store.connect_failed", "error", err)
			return nil, err
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
	} else {
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// modernc's driver is not safe for concurrent writers on one
		// connection pool beyond this; the single-writer mutex covers us.
		db.SetMaxOpenConns(1)
		s.db = db
	}

	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		s.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("register.store.open", "backend", s.backend(), "policy", policy.String())
	return s, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func (s *Store) backend() string {
	if s.pool != nil {
		return "postgres"
	}
	return "sqlite"
}

// rebind converts ? placeholders to $n for the postgres backend.
func (s *Store) rebind(query string) string {
	if s.pool == nil {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load returns all register records, sorted by stem.
func (s *Store) Load(ctx context.Context) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stem, caseworker, label, opponent, kind, updated_at FROM case_register ORDER BY stem`)
	if err != nil {
		return nil, fmt.Errorf("query register: %w", err)
	}
	defer rows.Close()

	var out []CaseRecord
	for rows.Next() {
		var r CaseRecord
		var updated string
		if err := rows.Scan(&r.Stem, &r.CaseworkerCode, &r.Label, &r.Opponent, &r.Type, &updated); err != nil {
			return nil, fmt.Errorf("scan register row: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339, updated); perr == nil {
			r.UpdatedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TakeSnapshot loads the register into an immutable snapshot for a
// pipeline run.
func (s *Store) TakeSnapshot(ctx context.Context) (*Snapshot, error) {
	recs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(recs), nil
}

// Merge applies an incoming register upload under the store's policy and
// persists the merged result atomically.
func (s *Store) Merge(ctx context.Context, incoming []CaseRecord) (MergeStats, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()

	existing, err := s.Load(ctx)
	if err != nil {
		return MergeStats{}, err
	}
	merged, stats := Merge(existing, incoming, s.policy, time.Now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MergeStats{}, fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM case_register`); err != nil {
		return MergeStats{}, fmt.Errorf("clear register: %w", err)
	}
	insert := s.rebind(`INSERT INTO case_register (stem, caseworker, label, opponent, kind, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, r := range merged {
		if _, err := tx.ExecContext(ctx, insert,
			r.Stem, r.CaseworkerCode, r.Label, r.Opponent, r.Type, r.UpdatedAt.Format(time.RFC3339)); err != nil {
			return MergeStats{}, fmt.Errorf("insert stem %s: %w", r.Stem, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return MergeStats{}, fmt.Errorf("commit merge: %w", err)
	}

	s.logger.Info("register.merge.ok",
		"added", stats.Added,
		"updated", stats.Updated,
		"carried", stats.Carried,
		"skipped", stats.Skipped,
		"total", len(merged),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}

// HealthCheck pings the backing database.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = common.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connections gracefully.
func (s *Store) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("register.store.close_error", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
