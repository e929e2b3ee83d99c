package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/edvm/autoblogger/internal/workflow"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store wraps the Postgres connection for users and persisted runs.
type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store { return &Store{DB: db} }

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// User is an account that owns generation runs.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser inserts a new account and returns its ID. A duplicate email maps
// to ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

// GetUserByEmail fetches an account for credential checks.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("fetching user: %w", err)
	}
	return u, nil
}

// Run is a persisted generation run. Record holds the full workflow record as
// JSONB so the audit trail survives verbatim.
type Run struct {
	ID        string
	UserID    int64
	Topic     string
	Status    string
	Record    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveRun upserts the run's terminal record. Re-saving a run replaces its
// record and status.
func (s *Store) SaveRun(ctx context.Context, userID int64, rec workflow.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling run record: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO runs (id, user_id, topic, status, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, record = EXCLUDED.record, updated_at = NOW()`,
		rec.ID, userID, rec.Topic, string(rec.Status), payload)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", rec.ID, err)
	}
	return nil
}

// GetRun fetches one run by ID, scoped to its owner.
func (s *Store) GetRun(ctx context.Context, userID int64, id string) (Run, error) {
	var r Run
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, topic, status, record, created_at, updated_at
		FROM runs WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&r.ID, &r.UserID, &r.Topic, &r.Status, &r.Record, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("fetching run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns a user's runs, newest first.
func (s *Store) ListRuns(ctx context.Context, userID int64, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, topic, status, record, created_at, updated_at
		FROM runs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.UserID, &r.Topic, &r.Status, &r.Record, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
