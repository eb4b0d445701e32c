package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"finance_service/internal/config"
	"finance_service/internal/models"
	"finance_service/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	if err := RunMigrations(migrateURL(cfg)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = cfg.Postgres.MaxConns
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, email, name string, passHash []byte) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, password_hash, created_at, updated_at;
	`

	var u models.User

	err := r.pool.QueryRow(ctx, query, uuid.NewString(), email, name, passHash).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PassHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email), "storage.postgres.User")
}

func (r *PostgresRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.postgres.UserByID"

	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, storage.ErrUserNotFound
	}

	query := `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, id), op)
}

func (r *PostgresRepo) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteUser"

	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrUserNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) scanUser(row pgx.Row, op string) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PassHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) SaveCategory(ctx context.Context, name string) (models.Category, error) {
	const op = "storage.postgres.SaveCategory"

	query := `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at, updated_at;
	`

	var c models.Category

	err := r.pool.QueryRow(ctx, query, uuid.NewString(), name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return models.Category{}, storage.ErrCategoryExists
		}

		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (r *PostgresRepo) Category(ctx context.Context, id string) (models.Category, error) {
	const op = "storage.postgres.Category"

	if _, err := uuid.Parse(id); err != nil {
		return models.Category{}, storage.ErrCategoryNotFound
	}

	var c models.Category

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, storage.ErrCategoryNotFound
		}

		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (r *PostgresRepo) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "storage.postgres.Categories"

	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return categories, nil
}

func (r *PostgresRepo) DeleteCategory(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteCategory"

	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrCategoryNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return storage.ErrCategoryInUse
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrCategoryNotFound
	}

	return nil
}

func (r *PostgresRepo) SaveEntry(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error) {
	const op = "storage.postgres.SaveEntry"

	if !kind.Valid() {
		return models.Entry{}, storage.ErrUnknownKind
	}

	if _, err := uuid.Parse(e.CategoryID); err != nil {
		return models.Entry{}, storage.ErrCategoryNotFound
	}

	query := `
		INSERT INTO ` + kind.Table() + ` (id, name, amount, user_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, name, amount, user_id, category_id, created_at, updated_at;
	`

	row := r.pool.QueryRow(ctx, query, uuid.NewString(), e.Name, e.Amount, e.UserID, e.CategoryID, e.CreatedAt)

	saved, err := scanEntry(row)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return models.Entry{}, storage.ErrCategoryNotFound
		}

		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (r *PostgresRepo) DeleteEntry(ctx context.Context, kind models.Kind, userID, id string) error {
	const op = "storage.postgres.DeleteEntry"

	if !kind.Valid() {
		return storage.ErrUnknownKind
	}

	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrEntryNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM `+kind.Table()+` WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrEntryNotFound
	}

	return nil
}

// Entries lists a user's entries of one kind, newest first. A zero from or to leaves that side open.
func (r *PostgresRepo) Entries(ctx context.Context, kind models.Kind, userID string, from, to time.Time) ([]models.Entry, error) {
	const op = "storage.postgres.Entries"

	if !kind.Valid() {
		return nil, storage.ErrUnknownKind
	}

	query := `
		SELECT id, name, amount, user_id, category_id, created_at, updated_at
		FROM ` + kind.Table() + `
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query, userID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func scanEntry(row pgx.Row) (models.Entry, error) {
	var e models.Entry

	err := row.Scan(&e.ID, &e.Name, &e.Amount, &e.UserID, &e.CategoryID, &e.CreatedAt, &e.UpdatedAt)

	return e, err
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

// dsn builds the pgx connection string. A URL keeps passwords with spaces or
// quotes intact, which a key=value string would not.
func dsn(cfg *config.Config) string {
	return connURL("postgres", cfg)
}

// migrateURL builds the pgx5:// URL golang-migrate expects.
func migrateURL(cfg *config.Config) string {
	return connURL("pgx5", cfg)
}

func connURL(scheme string, cfg *config.Config) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(cfg.Postgres.User, cfg.Postgres.Password),
		Host:     net.JoinHostPort(cfg.Postgres.Host, strconv.Itoa(cfg.Postgres.Port)),
		Path:     "/" + cfg.Postgres.DBName,
		RawQuery: url.Values{"sslmode": []string{cfg.Postgres.SSLMode}}.Encode(),
	}

	return u.String()
}
