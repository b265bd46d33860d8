package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"calculations-api/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStorage backs the service with a single SQLite file. It is used for
// local development and tests; the production path is PostgreSQL.
type SQLiteStorage struct {
	DB *sql.DB
}

var _ Store = (*SQLiteStorage)(nil)

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return &SQLiteStorage{DB: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            created_at INTEGER NOT NULL
        );
        CREATE TABLE IF NOT EXISTS calculations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            operation TEXT NOT NULL,
            operand1 REAL NOT NULL,
            operand2 REAL NOT NULL,
            result REAL NOT NULL,
            user_id INTEGER NOT NULL REFERENCES users(id),
            created_at INTEGER NOT NULL
        );
    `)
	return err
}

// Timestamps are stored as millisecond integers to keep scanning portable.

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func (s *SQLiteStorage) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?1, ?2, ?3, ?4)",
		user.Username, user.Email, user.PasswordHash, toMillis(now))
	if isSQLiteUniqueViolation(err) {
		return ErrUserExists
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	var createdAt int64
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?1",
		username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

func (s *SQLiteStorage) CreateCalculation(ctx context.Context, calc *models.Calculation) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO calculations (operation, operand1, operand2, result, user_id, created_at)
         VALUES (?1, ?2, ?3, ?4, ?5, ?6)`,
		calc.Operation, calc.Operand1, calc.Operand2, calc.Result, calc.UserID, toMillis(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	calc.ID = id
	calc.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) ListCalculations(ctx context.Context, userID int64, offset, limit int) ([]models.Calculation, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, operation, operand1, operand2, result, user_id, created_at
         FROM calculations WHERE user_id = ?1 ORDER BY id LIMIT ?2 OFFSET ?3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calculations := make([]models.Calculation, 0)
	for rows.Next() {
		var calc models.Calculation
		var createdAt int64
		if err := rows.Scan(&calc.ID, &calc.Operation, &calc.Operand1, &calc.Operand2,
			&calc.Result, &calc.UserID, &createdAt); err != nil {
			return nil, err
		}
		calc.CreatedAt = fromMillis(createdAt)
		calculations = append(calculations, calc)
	}
	return calculations, rows.Err()
}

func (s *SQLiteStorage) GetCalculation(ctx context.Context, id, userID int64) (*models.Calculation, error) {
	var calc models.Calculation
	var createdAt int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, operation, operand1, operand2, result, user_id, created_at
         FROM calculations WHERE id = ?1 AND user_id = ?2`,
		id, userID).Scan(&calc.ID, &calc.Operation, &calc.Operand1, &calc.Operand2,
		&calc.Result, &calc.UserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	calc.CreatedAt = fromMillis(createdAt)
	return &calc, nil
}

func (s *SQLiteStorage) UpdateCalculation(ctx context.Context, calc *models.Calculation) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE calculations SET operation = ?1, operand1 = ?2, operand2 = ?3, result = ?4
         WHERE id = ?5 AND user_id = ?6`,
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

func (s *SQLiteStorage) DeleteCalculation(ctx context.Context, id, userID int64) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM calculations WHERE id = ?1 AND user_id = ?2", id, userID)
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

func (s *SQLiteStorage) Close() error {
	return s.DB.Close()
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
