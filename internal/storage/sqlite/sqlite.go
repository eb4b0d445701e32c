package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finance_service/internal/models"
	"finance_service/internal/storage"

	"github.com/google/uuid"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so text comparison orders timestamps correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database file at path and migrates it.
// Pass ":memory:" only for throwaway use; every connection would see its own database.
func New(path string) (*SQLiteRepo, error) {
	const op = "storage.sqlite.New"

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%s: create db directory: %w", op, err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open database: %w", op, err)
	}

	// one writer at a time; sqlite serialises them anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping database: %w", op, err)
	}

	return &SQLiteRepo{db: db, now: time.Now}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) SaveUser(ctx context.Context, email, name string, passHash []byte) (models.User, error) {
	const op = "storage.sqlite.SaveUser"

	now := r.now().UTC()
	u := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		PassHash:  passHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PassHash, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *SQLiteRepo) User(ctx context.Context, email string) (models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE email = ?`,
		email,
	)

	return scanUser(row, "storage.sqlite.User")
}

func (r *SQLiteRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE id = ?`,
		id,
	)

	return scanUser(row, "storage.sqlite.UserByID")
}

func (r *SQLiteRepo) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteUser"

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affected(res, storage.ErrUserNotFound, op)
}

func (r *SQLiteRepo) SaveCategory(ctx context.Context, name string) (models.Category, error) {
	const op = "storage.sqlite.SaveCategory"

	now := r.now().UTC()
	c := models.Category{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
			return models.Category{}, storage.ErrCategoryExists
		}

		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (r *SQLiteRepo) Category(ctx context.Context, id string) (models.Category, error) {
	const op = "storage.sqlite.Category"

	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, storage.ErrCategoryNotFound
		}

		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (r *SQLiteRepo) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "storage.sqlite.Categories"

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return categories, nil
}

func (r *SQLiteRepo) DeleteCategory(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteCategory"

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
			return storage.ErrCategoryInUse
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return affected(res, storage.ErrCategoryNotFound, op)
}

func (r *SQLiteRepo) SaveEntry(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error) {
	const op = "storage.sqlite.SaveEntry"

	if !kind.Valid() {
		return models.Entry{}, storage.ErrUnknownKind
	}

	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+kind.Table()+` (id, name, amount, user_id, category_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Amount, e.UserID, e.CategoryID, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
			return models.Entry{}, storage.ErrCategoryNotFound
		}

		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	return e, nil
}

func (r *SQLiteRepo) DeleteEntry(ctx context.Context, kind models.Kind, userID, id string) error {
	const op = "storage.sqlite.DeleteEntry"

	if !kind.Valid() {
		return storage.ErrUnknownKind
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM `+kind.Table()+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affected(res, storage.ErrEntryNotFound, op)
}

// Entries lists a user's entries of one kind, newest first. A zero from or to leaves that side open.
func (r *SQLiteRepo) Entries(ctx context.Context, kind models.Kind, userID string, from, to time.Time) ([]models.Entry, error) {
	const op = "storage.sqlite.Entries"

	if !kind.Valid() {
		return nil, storage.ErrUnknownKind
	}

	query := `SELECT id, name, amount, user_id, category_id, created_at, updated_at FROM ` + kind.Table() + ` WHERE user_id = ?`
	args := []any{userID}

	if !from.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, formatTime(to))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)

	for rows.Next() {
		var (
			e                    models.Entry
			createdAt, updatedAt string
		)

		if err := rows.Scan(&e.ID, &e.Name, &e.Amount, &e.UserID, &e.CategoryID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner, op string) (models.User, error) {
	var (
		u                    models.User
		createdAt, updatedAt string
	)

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func scanCategory(row scanner) (models.Category, error) {
	var (
		c                    models.Category
		createdAt, updatedAt string
	)

	err := row.Scan(&c.ID, &c.Name, &createdAt, &updatedAt)
	if err != nil {
		return models.Category{}, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Category{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Category{}, err
	}

	return c, nil
}

func affected(res sql.Result, notFound error, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// isConstraint reports whether err is a sqlite constraint violation with one of the given extended codes.
func isConstraint(err error, codes ...int) bool {
	var sqliteErr *sqlitedrv.Error
	if errors.As(err, &sqliteErr) {
		for _, code := range codes {
			if sqliteErr.Code() == code {
				return true
			}
		}

		return false
	}

	msg := err.Error()
	if !strings.Contains(msg, "SQLITE_CONSTRAINT") && !strings.Contains(msg, "constraint failed") {
		return false
	}

	for _, code := range codes {
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			if strings.Contains(msg, "UNIQUE") {
				return true
			}
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			if strings.Contains(msg, "FOREIGN KEY") {
				return true
			}
		}
	}

	return false
}
