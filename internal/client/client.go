package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finance_service/internal/models"
)

// ErrNotLoggedIn is returned when a call needs a token and the session has
// none, or the server no longer accepts the stored one.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	session Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, session Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		session: session,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	Valid   bool            `json:"valid"`
}

func (c *Client) Register(ctx context.Context, email, name, password string) (models.Profile, error) {
	var p models.Profile

	_, err := c.do(ctx, http.MethodPost, "/v1/auth/register", false, map[string]any{
		"email": email, "name": name, "password": password,
	}, &p)

	return p, err
}

// Login stores the issued token in the session.
func (c *Client) Login(ctx context.Context, email, password string, reminder bool) (models.Profile, error) {
	const op = "client.Login"

	var p models.Profile

	env, err := c.do(ctx, http.MethodPost, "/v1/auth/login", false, map[string]any{
		"email": email, "password": password, "reminder": reminder,
	}, &p)
	if err != nil {
		return models.Profile{}, err
	}

	if err := c.session.Save(env.Token); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (c *Client) Logout() error {
	return c.session.Clear()
}

// Verify checks the stored token. A token the server rejects is dropped from
// the session and ErrNotLoggedIn is returned.
func (c *Client) Verify(ctx context.Context) (models.Profile, error) {
	const op = "client.Verify"

	token, err := c.session.Load()
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	if token == "" {
		return models.Profile{}, ErrNotLoggedIn
	}

	var p models.Profile

	_, err = c.do(ctx, http.MethodPost, "/v1/auth/verify", false, map[string]any{"token": token}, &p)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			if clearErr := c.session.Clear(); clearErr != nil {
				return models.Profile{}, fmt.Errorf("%s: %w", op, clearErr)
			}

			return models.Profile{}, ErrNotLoggedIn
		}

		return models.Profile{}, err
	}

	return p, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.CategoryWithEntries, error) {
	var out []models.CategoryWithEntries

	_, err := c.do(ctx, http.MethodGet, "/v1/category/list", true, nil, &out)

	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	var out models.Category

	_, err := c.do(ctx, http.MethodPost, "/v1/category/create", true, map[string]any{"name": name}, &out)

	return out, err
}

func (c *Client) CreateExpense(ctx context.Context, name string, amount float64, categoryID string, at time.Time) (models.Entry, error) {
	return c.createEntry(ctx, models.KindExpense, name, amount, categoryID, at)
}

func (c *Client) CreateIncoming(ctx context.Context, name string, amount float64, categoryID string, at time.Time) (models.Entry, error) {
	return c.createEntry(ctx, models.KindIncoming, name, amount, categoryID, at)
}

func (c *Client) createEntry(ctx context.Context, kind models.Kind, name string, amount float64, categoryID string, at time.Time) (models.Entry, error) {
	body := map[string]any{"name": name, "amount": amount, "categoryId": categoryID}
	if !at.IsZero() {
		body["createdAt"] = at.UTC().Format(time.RFC3339)
	}

	var out models.Entry

	_, err := c.do(ctx, http.MethodPost, "/v1/"+string(kind)+"/create", true, body, &out)

	return out, err
}

func (c *Client) Monthly(ctx context.Context, year, month int) (models.MonthlyReport, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	var out models.MonthlyReport

	_, err := c.do(ctx, http.MethodGet, "/v1/transactions/monthly-list?"+q.Encode(), true, nil, &out)

	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body any, out any) (envelope, error) {
	const op = "client.do"

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("%s: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token, err := c.session.Load()
		if err != nil {
			return envelope{}, fmt.Errorf("%s: %w", op, err)
		}
		if token == "" {
			return envelope{}, ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("%s: decode %s %s: %w", op, method, path, err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		_ = c.session.Clear()
		return env, ErrNotLoggedIn
	}

	if res.StatusCode >= http.StatusBadRequest {
		return env, &APIError{Status: res.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, fmt.Errorf("%s: %w", op, err)
		}
	}

	return env, nil
}
