package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"calculations-api/internal/models"

	"github.com/lib/pq"
)

type PostgresStorage struct {
	DB *sql.DB
}

var _ Store = (*PostgresStorage)(nil)

func NewPostgresStorage(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migratePostgres(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresStorage{DB: db}, nil
}

func migratePostgres(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username TEXT UNIQUE NOT NULL,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
        CREATE TABLE IF NOT EXISTS calculations (
            id BIGSERIAL PRIMARY KEY,
            operation TEXT NOT NULL,
            operand1 DOUBLE PRECISION NOT NULL,
            operand2 DOUBLE PRECISION NOT NULL,
            result DOUBLE PRECISION NOT NULL,
            user_id BIGINT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
    `)
	return err
}

// User methods

func (s *PostgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	err := s.DB.QueryRowContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at",
		user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if isPostgresUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Calculation methods

func (s *PostgresStorage) CreateCalculation(ctx context.Context, calc *models.Calculation) error {
	return s.DB.QueryRowContext(ctx,
		`INSERT INTO calculations (operation, operand1, operand2, result, user_id)
         VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		calc.Operation, calc.Operand1, calc.Operand2, calc.Result, calc.UserID).
		Scan(&calc.ID, &calc.CreatedAt)
}

func (s *PostgresStorage) ListCalculations(ctx context.Context, userID int64, offset, limit int) ([]models.Calculation, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, operation, operand1, operand2, result, user_id, created_at
         FROM calculations WHERE user_id = $1 ORDER BY id OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calculations := make([]models.Calculation, 0)
	for rows.Next() {
		var calc models.Calculation
		if err := rows.Scan(&calc.ID, &calc.Operation, &calc.Operand1, &calc.Operand2,
			&calc.Result, &calc.UserID, &calc.CreatedAt); err != nil {
			return nil, err
		}
		calculations = append(calculations, calc)
	}
	return calculations, rows.Err()
}

func (s *PostgresStorage) GetCalculation(ctx context.Context, id, userID int64) (*models.Calculation, error) {
	var calc models.Calculation
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, operation, operand1, operand2, result, user_id, created_at
         FROM calculations WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&calc.ID, &calc.Operation, &calc.Operand1, &calc.Operand2,
		&calc.Result, &calc.UserID, &calc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

func (s *PostgresStorage) UpdateCalculation(ctx context.Context, calc *models.Calculation) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE calculations SET operation = $1, operand1 = $2, operand2 = $3, result = $4
         WHERE id = $5 AND user_id = $6`,
		calc.Operation, calc.Operand1, calc.Operand2, calc.Result, calc.ID, calc.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteCalculation(ctx context.Context, id, userID int64) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM calculations WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.DB.Close()
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
