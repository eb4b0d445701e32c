package models

import "time"

type User struct {
	ID        string
	Email     string
	Name      string
	PassHash  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the public view of a user. It never carries the password hash.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryWithEntries is a category together with the caller's entries filed under it.
type CategoryWithEntries struct {
	Category
	Expenses  []Entry `json:"expenses"`
	Incomings []Entry `json:"incomings"`
}

// Kind tells expenses and incomings apart. Both share the Entry shape.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncoming Kind = "incoming"
)

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncoming
}

// Table is the relation holding entries of this kind.
func (k Kind) Table() string {
	switch k {
	case KindExpense:
		return "expenses"
	case KindIncoming:
		return "incomings"
	}

	return ""
}

type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	UserID     string    `json:"userId"`
	CategoryID string    `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Start and End bound the month as a half-open UTC interval.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

type Transactions struct {
	Expenses  []Entry `json:"expenses"`
	Incomings []Entry `json:"incomings"`
}

type Summary struct {
	Incomings float64 `json:"incomings"`
	Expenses  float64 `json:"expenses"`
	Balance   float64 `json:"balance"`
}

type MonthlyReport struct {
	UserID       string       `json:"userId"`
	Period       Period       `json:"period"`
	Transactions Transactions `json:"transactions"`
	Summary      Summary      `json:"summary"`
}

// Message is what the API publishes to the notification queue and the mail sender consumes.
type Message struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Purpose string `json:"purpose"`
}
