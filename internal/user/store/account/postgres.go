package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"signup/internal/user/models"
	"signup/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Schema creates the accounts table. The unique index on email backs the
// service-level email check when two registrations race.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id               UUID PRIMARY KEY,
	username         TEXT NOT NULL,
	email            TEXT NOT NULL,
	password_digest  TEXT NOT NULL,
	inactive         BOOLEAN NOT NULL DEFAULT TRUE,
	activation_token TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (email);
`

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table and indexes if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}

// Create inserts account. Returns sentinel.ErrAlreadyUsed when the email
// unique index rejects the row.
func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, password_digest, inactive, activation_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordDigest,
		account.Inactive,
		account.ActivationToken,
		account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("email %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, username, email, password_digest, inactive, activation_token, created_at
		FROM accounts
		WHERE email = $1
	`
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT id, username, email, password_digest, inactive, activation_token, created_at
		FROM accounts
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("delete accounts: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordDigest,
		&a.Inactive,
		&a.ActivationToken,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
