package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrEmptySecret  = errors.New("signing secret is empty")
)

type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and parses HS256 identity tokens. Tokens are signed with the
// current secret; previous secrets are still accepted so the key can be rotated
// without logging everybody out.
type Manager struct {
	keys       map[string][]byte
	currentKID string
	shortTTL   time.Duration
	longTTL    time.Duration
	now        func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now for both issuing and parsing.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func New(secret string, previous []string, shortTTL, longTTL time.Duration, opts ...Option) (*Manager, error) {
	const op = "jwt.New"

	if secret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	m := &Manager{
		keys:       make(map[string][]byte, len(previous)+1),
		currentKID: KeyID(secret),
		shortTTL:   shortTTL,
		longTTL:    longTTL,
		now:        time.Now,
	}

	m.keys[m.currentKID] = []byte(secret)
	for _, s := range previous {
		if s == "" {
			continue
		}
		m.keys[KeyID(s)] = []byte(s)
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// TTL returns the lifetime used for a token; extended is the "remember me" flag.
func (m *Manager) TTL(extended bool) time.Duration {
	if extended {
		return m.longTTL
	}

	return m.shortTTL
}

func (m *Manager) NewToken(userID string, extended bool) (string, error) {
	const op = "jwt.NewToken"

	now := m.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL(extended))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.currentKID

	signed, err := token.SignedString(m.keys[m.currentKID])
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Parse validates signature and expiry and returns the user id carried in sub.
func (m *Manager) Parse(tokenStr string) (string, error) {
	const op = "jwt.Parse"

	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return "", fmt.Errorf("%s: %w: %v", op, ErrTokenInvalid, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return claims.Subject, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	kid, _ := t.Header["kid"].(string)

	key, ok := m.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}

	return key, nil
}

// KeyID derives a short public identifier for a secret.
func KeyID(secret string) string {
	sum := sha256.Sum256([]byte(secret))

	return hex.EncodeToString(sum[:4])
}
