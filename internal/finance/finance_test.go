package finance

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"finance_service/internal/lib/logger/handlers/slogdiscard"
	"finance_service/internal/models"
	"finance_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	seq        int
	categories map[string]models.Category
	entries    map[models.Kind][]models.Entry
	listErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[string]models.Category),
		entries:    make(map[models.Kind][]models.Entry),
	}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return "id-" + strconv.Itoa(f.seq)
}

func (f *fakeStore) SaveCategory(_ context.Context, name string) (models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.categories {
		if c.Name == name {
			return models.Category{}, storage.ErrCategoryExists
		}
	}

	c := models.Category{ID: f.nextID(), Name: name}
	f.categories[c.ID] = c

	return c, nil
}

func (f *fakeStore) Category(_ context.Context, id string) (models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.categories[id]
	if !ok {
		return models.Category{}, storage.ErrCategoryNotFound
	}

	return c, nil
}

func (f *fakeStore) Categories(_ context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.categories[id]; !ok {
		return storage.ErrCategoryNotFound
	}

	for _, list := range f.entries {
		for _, e := range list {
			if e.CategoryID == id {
				return storage.ErrCategoryInUse
			}
		}
	}

	delete(f.categories, id)

	return nil
}

func (f *fakeStore) SaveEntry(_ context.Context, kind models.Kind, e models.Entry) (models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.categories[e.CategoryID]; !ok {
		return models.Entry{}, storage.ErrCategoryNotFound
	}

	e.ID = f.nextID()
	e.UpdatedAt = e.CreatedAt
	f.entries[kind] = append(f.entries[kind], e)

	return e, nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, kind models.Kind, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.entries[kind]
	for i, e := range list {
		if e.ID == id && e.UserID == userID {
			f.entries[kind] = append(list[:i], list[i+1:]...)
			return nil
		}
	}

	return storage.ErrEntryNotFound
}

func (f *fakeStore) Entries(_ context.Context, kind models.Kind, userID string, from, to time.Time) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]models.Entry, 0)
	for _, e := range f.entries[kind] {
		if e.UserID != userID {
			continue
		}
		if !from.IsZero() && e.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}

	return out, nil
}

func newFinance() (*Finance, *fakeStore) {
	store := newFakeStore()
	return New(slogdiscard.NewDiscardLogger(), store, store), store
}

func TestCreateCategory(t *testing.T) {
	f, _ := newFinance()
	ctx := context.Background()

	c, err := f.CreateCategory(ctx, " <i>Food</i> ")
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Name)

	_, err = f.CreateCategory(ctx, "Food")
	assert.ErrorIs(t, err, storage.ErrCategoryExists)
}

func TestCreateEntry_SignConvention(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.Kind
		amount  float64
		wantErr error
	}{
		{name: "negative expense", kind: models.KindExpense, amount: -5},
		{name: "positive expense", kind: models.KindExpense, amount: 5, wantErr: ErrInvalidAmount},
		{name: "zero expense", kind: models.KindExpense, amount: 0, wantErr: ErrInvalidAmount},
		{name: "positive incoming", kind: models.KindIncoming, amount: 5},
		{name: "negative incoming", kind: models.KindIncoming, amount: -5, wantErr: ErrInvalidAmount},
		{name: "largest incoming", kind: models.KindIncoming, amount: 999999999999.99},
		{name: "incoming rounding up to the bound", kind: models.KindIncoming, amount: 999999999999.999, wantErr: ErrAmountOutOfRange},
		{name: "huge incoming", kind: models.KindIncoming, amount: 1.5e308, wantErr: ErrAmountOutOfRange},
		{name: "expense at the bound", kind: models.KindExpense, amount: -1e12, wantErr: ErrAmountOutOfRange},
		{name: "expense rounding to zero", kind: models.KindExpense, amount: -0.001, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newFinance()
			ctx := context.Background()

			c, err := f.CreateCategory(ctx, "Misc")
			require.NoError(t, err)

			_, err = f.CreateEntry(ctx, tt.kind, "u1", models.Entry{Name: "x", Amount: tt.amount, CategoryID: c.ID})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateEntry_RoundsToCents(t *testing.T) {
	f, _ := newFinance()
	ctx := context.Background()

	c, err := f.CreateCategory(ctx, "Misc")
	require.NoError(t, err)

	e, err := f.CreateEntry(ctx, models.KindIncoming, "u1", models.Entry{Name: "x", Amount: 10.006, CategoryID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, 10.01, e.Amount)
}

func TestCreateEntry_DefaultsAndOwner(t *testing.T) {
	f, _ := newFinance()
	fixed := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }
	ctx := context.Background()

	c, err := f.CreateCategory(ctx, "Food")
	require.NoError(t, err)

	e, err := f.CreateEntry(ctx, models.KindExpense, "u1", models.Entry{Name: "Lunch", Amount: -12.5, CategoryID: c.ID, UserID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, fixed, e.CreatedAt)

	_, err = f.CreateEntry(ctx, models.KindExpense, "u1", models.Entry{Name: "Lunch", Amount: -1, CategoryID: "missing"})
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
}

func TestCategories_EmbedsOnlyCallersEntries(t *testing.T) {
	f, _ := newFinance()
	ctx := context.Background()

	food, err := f.CreateCategory(ctx, "Food")
	require.NoError(t, err)
	salary, err := f.CreateCategory(ctx, "Salary")
	require.NoError(t, err)

	_, err = f.CreateEntry(ctx, models.KindExpense, "u1", models.Entry{Name: "Lunch", Amount: -10, CategoryID: food.ID})
	require.NoError(t, err)
	_, err = f.CreateEntry(ctx, models.KindIncoming, "u1", models.Entry{Name: "June", Amount: 1000, CategoryID: salary.ID})
	require.NoError(t, err)
	_, err = f.CreateEntry(ctx, models.KindExpense, "u2", models.Entry{Name: "Dinner", Amount: -20, CategoryID: food.ID})
	require.NoError(t, err)

	list, err := f.Categories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Food", list[0].Name)
	require.Len(t, list[0].Expenses, 1)
	assert.Equal(t, "Lunch", list[0].Expenses[0].Name)
	assert.Empty(t, list[0].Incomings)

	assert.Equal(t, "Salary", list[1].Name)
	assert.Len(t, list[1].Incomings, 1)
	assert.Empty(t, list[1].Expenses)
}

func TestDeleteCategory_InUse(t *testing.T) {
	f, _ := newFinance()
	ctx := context.Background()

	c, err := f.CreateCategory(ctx, "Food")
	require.NoError(t, err)

	e, err := f.CreateEntry(ctx, models.KindExpense, "u1", models.Entry{Name: "Lunch", Amount: -10, CategoryID: c.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.DeleteCategory(ctx, c.ID), storage.ErrCategoryInUse)

	require.NoError(t, f.DeleteEntry(ctx, models.KindExpense, "u1", e.ID))
	assert.NoError(t, f.DeleteCategory(ctx, c.ID))
}

func TestDeleteEntry_Foreign(t *testing.T) {
	f, _ := newFinance()
	ctx := context.Background()

	c, err := f.CreateCategory(ctx, "Food")
	require.NoError(t, err)

	e, err := f.CreateEntry(ctx, models.KindExpense, "u1", models.Entry{Name: "Lunch", Amount: -10, CategoryID: c.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.DeleteEntry(ctx, models.KindExpense, "u2", e.ID), storage.ErrEntryNotFound)
}

func TestMonthly(t *testing.T) {
	f, _ := newFinance()
	ctx := context.Background()

	c, err := f.CreateCategory(ctx, "Misc")
	require.NoError(t, err)

	add := func(kind models.Kind, user string, amount float64, at time.Time) {
		_, err := f.CreateEntry(ctx, kind, user, models.Entry{Name: "x", Amount: amount, CategoryID: c.ID, CreatedAt: at})
		require.NoError(t, err)
	}

	add(models.KindIncoming, "u1", 1000.10, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	add(models.KindExpense, "u1", -200.05, time.Date(2024, time.February, 15, 8, 0, 0, 0, time.UTC))
	// last day of a leap February must be included
	add(models.KindExpense, "u1", -0.05, time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC))
	add(models.KindExpense, "u1", -99, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	add(models.KindExpense, "u1", -99, time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC))
	add(models.KindIncoming, "u2", 5000, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))

	report, err := f.Monthly(ctx, "u1", 2024, 2)
	require.NoError(t, err)

	assert.Equal(t, "u1", report.UserID)
	assert.Equal(t, models.Period{Month: 2, Year: 2024}, report.Period)
	assert.Len(t, report.Transactions.Incomings, 1)
	assert.Len(t, report.Transactions.Expenses, 2)
	assert.Equal(t, models.Summary{Incomings: 1000.10, Expenses: -200.10, Balance: 800.00}, report.Summary)
}

func TestMonthly_Empty(t *testing.T) {
	f, _ := newFinance()

	report, err := f.Monthly(context.Background(), "u1", 2024, 7)
	require.NoError(t, err)
	assert.Empty(t, report.Transactions.Expenses)
	assert.Empty(t, report.Transactions.Incomings)
	assert.Equal(t, models.Summary{}, report.Summary)
}

func TestMonthly_InvalidPeriod(t *testing.T) {
	f, _ := newFinance()

	for _, p := range []models.Period{{Month: 0, Year: 2024}, {Month: 13, Year: 2024}, {Month: 1, Year: 1899}} {
		_, err := f.Monthly(context.Background(), "u1", p.Year, p.Month)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	}
}

func TestMonthly_StoreError(t *testing.T) {
	f, store := newFinance()
	store.listErr = errors.New("boom")

	_, err := f.Monthly(context.Background(), "u1", 2024, 1)
	assert.Error(t, err)
}
