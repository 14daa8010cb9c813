// Package postgresstore is a durable implementation of queue.Store backed
// by PostgreSQL, for deployments that need submission status to survive a
// process restart. It satisfies the same interface and invariants as
// queue.InMemoryStore; InMemoryStore remains the default.
package postgresstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// Config holds the connection parameters for the durable store.
type Config struct {
	ConnectionString string
	MaxConnections   int32
	ConnectTimeout   time.Duration
	MigrationsPath   string
	StatusTTL        time.Duration
	WaitPerJob       time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxConnections == 0 {
		c.MaxConnections = 10
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.MigrationsPath == "" {
		c.MigrationsPath = "file://pkg/engine/queue/postgresstore/migrations"
	}
	if c.StatusTTL == 0 {
		c.StatusTTL = time.Hour
	}
	if c.WaitPerJob == 0 {
		c.WaitPerJob = 3 * time.Second
	}
	return c
}

// Store is a PostgreSQL-backed queue.Store.
type Store struct {
	pool   *pgxpool.Pool
	config Config
}

// New opens a connection pool, verifies connectivity, and applies pending
// migrations.
func New(ctx context.Context, config Config) (*Store, error) {
	config = config.withDefaults()
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("postgresstore: connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("postgresstore: parse connection string: %w", err)
	}
	poolConfig.MaxConns = config.MaxConnections
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	timeoutCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(timeoutCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgresstore: create pool: %w", err)
	}
	if err := pool.Ping(timeoutCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgresstore: ping: %w", err)
	}

	store := &Store{pool: pool, config: config}
	if err := store.migrate(ctx, config); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context, config Config) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("postgresstore: migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(config.MigrationsPath, "pgx/v5", driver)
	if err != nil {
		return fmt.Errorf("postgresstore: migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("postgresstore: apply migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Enqueue(ctx context.Context, req *model.SubmissionRequest) (string, error) {
	if req.ID == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("postgresstore: generate id: %w", err)
		}
		req.ID = "sub_" + hex.EncodeToString(buf)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("postgresstore: marshal request: %w", err)
	}
	status := model.NewQueuedStatus(req.ID)
	statusPayload, err := json.Marshal(status)
	if err != nil {
		return "", fmt.Errorf("postgresstore: marshal status: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("postgresstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO execengine_queue (submission_id, payload, enqueued_at) VALUES ($1, $2, now())`,
		req.ID, payload); err != nil {
		return "", fmt.Errorf("postgresstore: insert queue row: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO execengine_status (submission_id, payload, expires_at)
		 VALUES ($1, $2, now() + $3::interval)
		 ON CONFLICT (submission_id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`,
		req.ID, statusPayload, fmt.Sprintf("%d seconds", int64(s.config.StatusTTL.Seconds()))); err != nil {
		return "", fmt.Errorf("postgresstore: insert status row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("postgresstore: commit: %w", err)
	}
	return req.ID, nil
}

func (s *Store) DequeueBlocking(ctx context.Context, timeout time.Duration) (*model.SubmissionRequest, bool, error) {
	deadline := time.Now().Add(timeout)
	const pollInterval = 100 * time.Millisecond

	for {
		req, ok, err := s.dequeueOnce(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return req, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, nil
		case <-time.After(pollInterval):
		}
	}
}

func (s *Store) dequeueOnce(ctx context.Context) (*model.SubmissionRequest, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("postgresstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	var payload []byte
	err = tx.QueryRow(ctx,
		`SELECT submission_id, payload FROM execengine_queue
		 ORDER BY enqueued_at ASC
		 FOR UPDATE SKIP LOCKED
		 LIMIT 1`).Scan(&id, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgresstore: select next job: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM execengine_queue WHERE submission_id = $1`, id); err != nil {
		return nil, false, fmt.Errorf("postgresstore: delete job row: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("postgresstore: commit: %w", err)
	}

	var req model.SubmissionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, false, fmt.Errorf("postgresstore: unmarshal request: %w", err)
	}
	return &req, true, nil
}

func (s *Store) Size(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM execengine_queue`).Scan(&n)
	return n, err
}

func (s *Store) PositionOf(ctx context.Context, id string) (int, bool, error) {
	var position int
	err := s.pool.QueryRow(ctx,
		`SELECT rank FROM (
		   SELECT submission_id, row_number() OVER (ORDER BY enqueued_at ASC) AS rank
		   FROM execengine_queue
		 ) ranked WHERE submission_id = $1`, id).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return position, true, nil
}

func (s *Store) EstimatedWait(ctx context.Context) (time.Duration, error) {
	size, err := s.Size(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(size) * s.config.WaitPerJob, nil
}

func (s *Store) Cancel(ctx context.Context, id string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("postgresstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM execengine_queue WHERE submission_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("postgresstore: delete job row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	status := &model.SubmissionStatus{SubmissionID: id, Status: model.StatusCancelled, TestCaseResults: []model.TestCaseResult{}}
	payload, err := json.Marshal(status)
	if err != nil {
		return false, fmt.Errorf("postgresstore: marshal status: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE execengine_status SET payload = $2, expires_at = now() + $3::interval WHERE submission_id = $1`,
		id, payload, fmt.Sprintf("%d seconds", int64(s.config.StatusTTL.Seconds()))); err != nil {
		return false, fmt.Errorf("postgresstore: update status row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("postgresstore: commit: %w", err)
	}
	return true, nil
}

func (s *Store) GetStatus(ctx context.Context, id string) (*model.SubmissionStatus, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM execengine_status WHERE submission_id = $1 AND expires_at > now()`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgresstore: select status: %w", err)
	}

	var status model.SubmissionStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, false, fmt.Errorf("postgresstore: unmarshal status: %w", err)
	}
	return &status, true, nil
}

func (s *Store) SetStatus(ctx context.Context, status *model.SubmissionStatus) error {
	if status == nil || status.SubmissionID == "" {
		return fmt.Errorf("postgresstore: status must have a submission id")
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("postgresstore: marshal status: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO execengine_status (submission_id, payload, expires_at)
		 VALUES ($1, $2, now() + $3::interval)
		 ON CONFLICT (submission_id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`,
		status.SubmissionID, payload, fmt.Sprintf("%d seconds", int64(s.config.StatusTTL.Seconds())))
	if err != nil {
		return fmt.Errorf("postgresstore: upsert status: %w", err)
	}
	return nil
}
