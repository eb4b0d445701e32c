package postgres

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"finance_service/internal/config"
	"finance_service/internal/models"
	"finance_service/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Postgres: config.Postgres{
			Host:     "db.local",
			Port:     5433,
			User:     "finance",
			Password: `p@ss word'"`,
			DBName:   "ledger",
			SSLMode:  "disable",
		},
	}
}

func TestDSN(t *testing.T) {
	pc, err := pgxpool.ParseConfig(dsn(testConfig()))
	require.NoError(t, err)

	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "finance", pc.ConnConfig.User)
	assert.Equal(t, `p@ss word'"`, pc.ConnConfig.Password)
	assert.Equal(t, "ledger", pc.ConnConfig.Database)
	assert.Nil(t, pc.ConnConfig.TLSConfig)
}

func TestMigrateURL(t *testing.T) {
	u, err := url.Parse(migrateURL(testConfig()))
	require.NoError(t, err)

	pass, _ := u.User.Password()

	assert.Equal(t, "pgx5", u.Scheme)
	assert.Equal(t, "db.local:5433", u.Host)
	assert.Equal(t, "finance", u.User.Username())
	assert.Equal(t, `p@ss word'"`, pass)
	assert.Equal(t, "/ledger", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestPgCode(t *testing.T) {
	err := fmt.Errorf("storage.postgres.SaveUser: %w", &pgconn.PgError{Code: codeUniqueViolation})

	assert.Equal(t, codeUniqueViolation, pgCode(err))
	assert.Empty(t, pgCode(fmt.Errorf("plain")))
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(time.Time{}))

	at := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, nullTime(at))
	assert.Equal(t, at, *nullTime(at))
}

// Malformed ids and unknown kinds are answered without a query, so a repo
// with no pool is enough here.
func TestRejectsBeforeQuerying(t *testing.T) {
	r := &PostgresRepo{}
	ctx := context.Background()

	_, err := r.UserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.ErrorIs(t, r.DeleteUser(ctx, "not-a-uuid"), storage.ErrUserNotFound)

	_, err = r.Category(ctx, "42")
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)

	assert.ErrorIs(t, r.DeleteCategory(ctx, "42"), storage.ErrCategoryNotFound)

	_, err = r.SaveEntry(ctx, models.Kind("refund"), models.Entry{})
	assert.ErrorIs(t, err, storage.ErrUnknownKind)

	_, err = r.SaveEntry(ctx, models.KindExpense, models.Entry{CategoryID: "food"})
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)

	assert.ErrorIs(t, r.DeleteEntry(ctx, models.Kind("refund"), "u1", "e1"), storage.ErrUnknownKind)
	assert.ErrorIs(t, r.DeleteEntry(ctx, models.KindIncoming, "u1", "e1"), storage.ErrEntryNotFound)

	_, err = r.Entries(ctx, models.Kind("refund"), "u1", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, storage.ErrUnknownKind)
}
