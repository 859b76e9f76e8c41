package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/liftedinit/roadchain/internal/models"
	"github.com/liftedinit/roadchain/internal/store"
)

//go:embed migrations/*
var migrationsFS embed.FS

const (
	BlockCountQuery = `SELECT COUNT(*) FROM api.chain_blocks`

	selectBlocksQuery = `
		SELECT id, previous_hash, ts, actor, payload, hash
		FROM api.chain_blocks
		ORDER BY id ASC
	`

	// The insert only succeeds for the next index, which keeps the table
	// append only even with several writers.
	insertBlockQuery = `
		INSERT INTO api.chain_blocks (id, previous_hash, ts, actor, payload, hash)
		SELECT $1::bigint, $2::text, $3::text, $4::text, $5::text, $6::text
		WHERE $1::bigint = (SELECT COUNT(*) FROM api.chain_blocks)
	`

	uniqueViolation = "23505"
)

// Store persists chain records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

var _ store.Store = (*Store)(nil)

func NewStore(ctx context.Context, connString string, maxConns uint) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	if maxConns > math.MaxInt32 {
		return nil, fmt.Errorf("max connections exceeds maximum int32 value")
	}
	if maxConns > 0 {
		config.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	s := &Store{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}

	// Run migrations. This is idempotent.
	if err = s.runMigrations(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// DB returns a database/sql handle sharing the connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Load(ctx context.Context) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, selectBlocksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			id      int64
			ts      string
			payload string
			r       models.Record
		)
		if err := rows.Scan(&id, &r.PreviousHash, &ts, &r.Actor, &payload, &r.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		r.Index = uint64(id)
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp of block %d: %w", id, err)
		}
		r.Payload = []byte(payload)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocks: %w", err)
	}

	return records, nil
}

func (s *Store) Append(ctx context.Context, r models.Record) error {
	if r.Index > math.MaxInt64 {
		return fmt.Errorf("block index %d exceeds maximum int64 value", r.Index)
	}

	tag, err := s.pool.Exec(ctx, insertBlockQuery,
		int64(r.Index),
		r.PreviousHash,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Actor,
		string(r.Payload),
		r.Hash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: index %d already stored", store.ErrOutOfOrder, r.Index)
		}
		return fmt.Errorf("failed to write chain block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: index %d", store.ErrOutOfOrder, r.Index)
	}

	return nil
}

// GetLatestBlock returns the index and hash of the last stored block, or nil
// for an empty table.
func (s *Store) GetLatestBlock(ctx context.Context) (*models.Record, error) {
	var (
		id int64
		r  models.Record
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, hash
		FROM api.chain_blocks
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&id, &r.Hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No rows found
		}
		return nil, fmt.Errorf("failed to get the latest block: %w", err)
	}
	r.Index = uint64(id)
	return &r, nil
}

// GetMissingBlockIds returns the gaps between the first and last stored index.
func (s *Store) GetMissingBlockIds(ctx context.Context) ([]uint64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id
		FROM generate_series(
				 (SELECT MIN(id) FROM api.chain_blocks),
				 (SELECT MAX(id) FROM api.chain_blocks)
			 ) AS s(id)
		LEFT JOIN api.chain_blocks t ON t.id = s.id
		WHERE t.id IS NULL;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get missing block IDs: %w", err)
	}
	defer rows.Close()

	var missing []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan missing block ID: %w", err)
		}
		missing = append(missing, uint64(id))
	}

	return missing, rows.Err()
}

func (s *Store) runMigrations() error {
	slog.Info("Running PostgreSQL migrations...")

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(s.pool), &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	slog.Info("Closing PostgreSQL connection pool")
	if err := s.db.Close(); err != nil {
		slog.Warn("Failed to close database handle", "error", err)
	}
	s.pool.Close()
	slog.Info("PostgreSQL connection pool closed")
	return nil
}
