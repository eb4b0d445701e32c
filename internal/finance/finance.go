package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/lib/sanitize"
	"finance_service/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	minYear = 1900

	// MaxAmount is the exclusive bound on an entry's magnitude. It matches the
	// NUMERIC(14,2) amount columns.
	MaxAmount = 1e12
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountOutOfRange is an ErrInvalidAmount for magnitudes of MaxAmount or more.
	ErrAmountOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidAmount)
)

type CategoryStore interface {
	SaveCategory(ctx context.Context, name string) (models.Category, error)
	Category(ctx context.Context, id string) (models.Category, error)
	Categories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type EntryStore interface {
	SaveEntry(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error)
	DeleteEntry(ctx context.Context, kind models.Kind, userID, id string) error
	Entries(ctx context.Context, kind models.Kind, userID string, from, to time.Time) ([]models.Entry, error)
}

type Finance struct {
	log        *slog.Logger
	categories CategoryStore
	entries    EntryStore
	now        func() time.Time
}

func New(log *slog.Logger, categories CategoryStore, entries EntryStore) *Finance {
	return &Finance{
		log:        log,
		categories: categories,
		entries:    entries,
		now:        time.Now,
	}
}

func (f *Finance) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	const op = "finance.CreateCategory"

	c, err := f.categories.SaveCategory(ctx, sanitize.Text(name))
	if err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	f.log.Info("category created", slog.String("op", op), slog.String("category_id", c.ID))

	return c, nil
}

func (f *Finance) DeleteCategory(ctx context.Context, id string) error {
	const op = "finance.DeleteCategory"

	if err := f.categories.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f.log.Info("category deleted", slog.String("op", op), slog.String("category_id", id))

	return nil
}

func (f *Finance) Category(ctx context.Context, id string) (models.Category, error) {
	const op = "finance.Category"

	c, err := f.categories.Category(ctx, id)
	if err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// Categories lists every category with the user's entries filed under it.
func (f *Finance) Categories(ctx context.Context, userID string) ([]models.CategoryWithEntries, error) {
	const op = "finance.Categories"

	var (
		categories          []models.Category
		expenses, incomings []models.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		categories, err = f.categories.Categories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = f.entries.Entries(gctx, models.KindExpense, userID, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		incomings, err = f.entries.Entries(gctx, models.KindIncoming, userID, time.Time{}, time.Time{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[string]*models.CategoryWithEntries, len(categories))
	out := make([]models.CategoryWithEntries, len(categories))

	for i, c := range categories {
		out[i] = models.CategoryWithEntries{Category: c, Expenses: []models.Entry{}, Incomings: []models.Entry{}}
		byID[c.ID] = &out[i]
	}

	for _, e := range expenses {
		if c, ok := byID[e.CategoryID]; ok {
			c.Expenses = append(c.Expenses, e)
		}
	}
	for _, e := range incomings {
		if c, ok := byID[e.CategoryID]; ok {
			c.Incomings = append(c.Incomings, e)
		}
	}

	return out, nil
}

// CreateEntry stores an expense or incoming for userID. Expenses must be negative
// and incomings positive. A zero createdAt means now.
func (f *Finance) CreateEntry(ctx context.Context, kind models.Kind, userID string, e models.Entry) (models.Entry, error) {
	const op = "finance.CreateEntry"

	// stored with two decimals, so the checks see the stored value
	e.Amount = roundCents(e.Amount)

	if err := checkAmount(kind, e.Amount); err != nil {
		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	e.UserID = userID
	e.Name = sanitize.Text(e.Name)

	if e.CreatedAt.IsZero() {
		e.CreatedAt = f.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	saved, err := f.entries.SaveEntry(ctx, kind, e)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	f.log.Info("entry created",
		slog.String("op", op),
		slog.String("kind", string(kind)),
		slog.String("entry_id", saved.ID),
		slog.String("uid", userID),
	)

	return saved, nil
}

func (f *Finance) DeleteEntry(ctx context.Context, kind models.Kind, userID, id string) error {
	const op = "finance.DeleteEntry"

	if err := f.entries.DeleteEntry(ctx, kind, userID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (f *Finance) Entries(ctx context.Context, kind models.Kind, userID string) ([]models.Entry, error) {
	const op = "finance.Entries"

	entries, err := f.entries.Entries(ctx, kind, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

// Monthly gathers a user's entries for one calendar month (UTC) and totals them.
func (f *Finance) Monthly(ctx context.Context, userID string, year, month int) (models.MonthlyReport, error) {
	const op = "finance.Monthly"

	if month < 1 || month > 12 || year < minYear {
		return models.MonthlyReport{}, fmt.Errorf("%s: %w", op, ErrInvalidPeriod)
	}

	period := models.Period{Month: month, Year: year}
	from, to := period.Start(), period.End()

	var expenses, incomings []models.Entry

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		expenses, err = f.entries.Entries(gctx, models.KindExpense, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		incomings, err = f.entries.Entries(gctx, models.KindIncoming, userID, from, to)
		return err
	})

	if err := g.Wait(); err != nil {
		f.log.Error("failed to load entries", slog.String("op", op), sl.Err(err))
		return models.MonthlyReport{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.MonthlyReport{
		UserID: userID,
		Period: period,
		Transactions: models.Transactions{
			Expenses:  expenses,
			Incomings: incomings,
		},
		Summary: summarize(expenses, incomings),
	}, nil
}

func summarize(expenses, incomings []models.Entry) models.Summary {
	var s models.Summary

	for _, e := range incomings {
		s.Incomings += e.Amount
	}
	for _, e := range expenses {
		s.Expenses += e.Amount
	}

	s.Incomings = roundCents(s.Incomings)
	s.Expenses = roundCents(s.Expenses)
	s.Balance = roundCents(s.Incomings + s.Expenses)

	return s
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func checkAmount(kind models.Kind, amount float64) error {
	if math.IsNaN(amount) || math.Abs(amount) >= MaxAmount {
		return ErrAmountOutOfRange
	}

	switch kind {
	case models.KindExpense:
		if amount >= 0 {
			return fmt.Errorf("%w: expense amount must be negative", ErrInvalidAmount)
		}
	case models.KindIncoming:
		if amount <= 0 {
			return fmt.Errorf("%w: incoming amount must be positive", ErrInvalidAmount)
		}
	}

	return nil
}
