package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finance_service/internal/models"
	"finance_service/internal/storage"

	"github.com/stretchr/testify/suite"
)

type SQLiteSuite struct {
	suite.Suite
	repo *SQLiteRepo
	ctx  context.Context
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}

func (s *SQLiteSuite) SetupTest() {
	repo, err := New(filepath.Join(s.T().TempDir(), "finance.db"))
	s.Require().NoError(err)

	s.repo = repo
	s.ctx = context.Background()
}

func (s *SQLiteSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func (s *SQLiteSuite) newUser(email string) models.User {
	u, err := s.repo.SaveUser(s.ctx, email, "Tester", []byte("hash"))
	s.Require().NoError(err)

	return u
}

func (s *SQLiteSuite) newCategory(name string) models.Category {
	c, err := s.repo.SaveCategory(s.ctx, name)
	s.Require().NoError(err)

	return c
}

func (s *SQLiteSuite) TestUserRoundTrip() {
	saved := s.newUser("a@x.io")

	byEmail, err := s.repo.User(s.ctx, "a@x.io")
	s.Require().NoError(err)
	s.Equal(saved.ID, byEmail.ID)
	s.Equal([]byte("hash"), byEmail.PassHash)
	s.WithinDuration(saved.CreatedAt, byEmail.CreatedAt, time.Millisecond)

	byID, err := s.repo.UserByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal("a@x.io", byID.Email)
}

func (s *SQLiteSuite) TestSaveUser_DuplicateEmail() {
	s.newUser("a@x.io")

	_, err := s.repo.SaveUser(s.ctx, "a@x.io", "Other", []byte("hash"))
	s.ErrorIs(err, storage.ErrUserExists)
}

func (s *SQLiteSuite) TestUser_NotFound() {
	_, err := s.repo.User(s.ctx, "missing@x.io")
	s.ErrorIs(err, storage.ErrUserNotFound)

	_, err = s.repo.UserByID(s.ctx, "not-an-id")
	s.ErrorIs(err, storage.ErrUserNotFound)
}

func (s *SQLiteSuite) TestDeleteUser_CascadesEntries() {
	u := s.newUser("a@x.io")
	c := s.newCategory("Food")

	_, err := s.repo.SaveEntry(s.ctx, models.KindExpense, models.Entry{Name: "Lunch", Amount: -10, UserID: u.ID, CategoryID: c.ID})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.DeleteUser(s.ctx, u.ID))
	s.ErrorIs(s.repo.DeleteUser(s.ctx, u.ID), storage.ErrUserNotFound)

	// the category is free again once the owner's entries are gone
	s.NoError(s.repo.DeleteCategory(s.ctx, c.ID))
}

func (s *SQLiteSuite) TestCategories() {
	s.newCategory("Salary")
	food := s.newCategory("Food")

	_, err := s.repo.SaveCategory(s.ctx, "Food")
	s.ErrorIs(err, storage.ErrCategoryExists)

	list, err := s.repo.Categories(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Food", list[0].Name)
	s.Equal("Salary", list[1].Name)

	got, err := s.repo.Category(s.ctx, food.ID)
	s.Require().NoError(err)
	s.Equal("Food", got.Name)

	s.Require().NoError(s.repo.DeleteCategory(s.ctx, food.ID))

	_, err = s.repo.Category(s.ctx, food.ID)
	s.ErrorIs(err, storage.ErrCategoryNotFound)
	s.ErrorIs(s.repo.DeleteCategory(s.ctx, food.ID), storage.ErrCategoryNotFound)
}

func (s *SQLiteSuite) TestDeleteCategory_InUse() {
	u := s.newUser("a@x.io")
	c := s.newCategory("Salary")

	_, err := s.repo.SaveEntry(s.ctx, models.KindIncoming, models.Entry{Name: "June", Amount: 1000, UserID: u.ID, CategoryID: c.ID})
	s.Require().NoError(err)

	s.ErrorIs(s.repo.DeleteCategory(s.ctx, c.ID), storage.ErrCategoryInUse)
}

func (s *SQLiteSuite) TestSaveEntry_UnknownCategory() {
	u := s.newUser("a@x.io")

	_, err := s.repo.SaveEntry(s.ctx, models.KindExpense, models.Entry{Name: "Lunch", Amount: -10, UserID: u.ID, CategoryID: "missing"})
	s.ErrorIs(err, storage.ErrCategoryNotFound)
}

func (s *SQLiteSuite) TestEntries_WindowAndOwnership() {
	owner := s.newUser("a@x.io")
	other := s.newUser("b@x.io")
	c := s.newCategory("Food")

	at := func(day int) time.Time { return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC) }

	for _, e := range []models.Entry{
		{Name: "first", Amount: -1, UserID: owner.ID, CategoryID: c.ID, CreatedAt: at(1)},
		{Name: "last", Amount: -2, UserID: owner.ID, CategoryID: c.ID, CreatedAt: at(31)},
		{Name: "april", Amount: -3, UserID: owner.ID, CategoryID: c.ID, CreatedAt: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "foreign", Amount: -4, UserID: other.ID, CategoryID: c.ID, CreatedAt: at(10)},
	} {
		_, err := s.repo.SaveEntry(s.ctx, models.KindExpense, e)
		s.Require().NoError(err)
	}

	period := models.Period{Month: 3, Year: 2024}

	march, err := s.repo.Entries(s.ctx, models.KindExpense, owner.ID, period.Start(), period.End())
	s.Require().NoError(err)
	s.Require().Len(march, 2)
	s.Equal("last", march[0].Name)
	s.Equal("first", march[1].Name)
	s.Equal(at(31), march[0].CreatedAt)

	all, err := s.repo.Entries(s.ctx, models.KindExpense, owner.ID, time.Time{}, time.Time{})
	s.Require().NoError(err)
	s.Len(all, 3)

	incomings, err := s.repo.Entries(s.ctx, models.KindIncoming, owner.ID, time.Time{}, time.Time{})
	s.Require().NoError(err)
	s.Empty(incomings)
}

func (s *SQLiteSuite) TestDeleteEntry_OnlyOwner() {
	owner := s.newUser("a@x.io")
	other := s.newUser("b@x.io")
	c := s.newCategory("Food")

	e, err := s.repo.SaveEntry(s.ctx, models.KindExpense, models.Entry{Name: "Lunch", Amount: -10, UserID: owner.ID, CategoryID: c.ID})
	s.Require().NoError(err)

	s.ErrorIs(s.repo.DeleteEntry(s.ctx, models.KindExpense, other.ID, e.ID), storage.ErrEntryNotFound)
	s.ErrorIs(s.repo.DeleteEntry(s.ctx, models.KindIncoming, owner.ID, e.ID), storage.ErrEntryNotFound)
	s.NoError(s.repo.DeleteEntry(s.ctx, models.KindExpense, owner.ID, e.ID))
}

func (s *SQLiteSuite) TestUnknownKind() {
	_, err := s.repo.SaveEntry(s.ctx, models.Kind("loan"), models.Entry{})
	s.ErrorIs(err, storage.ErrUnknownKind)

	_, err = s.repo.Entries(s.ctx, models.Kind("loan"), "u", time.Time{}, time.Time{})
	s.ErrorIs(err, storage.ErrUnknownKind)
}
