package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret   = "test-secret"
	shortTTL = 24 * time.Hour
	longTTL  = 30 * 24 * time.Hour
)

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()

	m, err := New(secret, nil, shortTTL, longTTL, opts...)
	require.NoError(t, err)

	return m
}

func TestNewToken_RoundTrip(t *testing.T) {
	m := newManager(t)

	token, err := m.NewToken("user-1", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestNewToken_ExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		extended bool
		elapsed  time.Duration
		wantErr  error
	}{
		{name: "short, before expiry", extended: false, elapsed: shortTTL - time.Minute},
		{name: "short, after expiry", extended: false, elapsed: shortTTL + time.Minute, wantErr: ErrTokenExpired},
		{name: "long, past short window", extended: true, elapsed: 2 * shortTTL},
		{name: "long, after expiry", extended: true, elapsed: longTTL + time.Minute, wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := newManager(t, WithClock(func() time.Time { return issuedAt }))
			token, err := issuer.NewToken("user-1", tt.extended)
			require.NoError(t, err)

			verifier := newManager(t, WithClock(func() time.Time { return issuedAt.Add(tt.elapsed) }))
			uid, err := verifier.Parse(token)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, uid)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user-1", uid)
		})
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := newManager(t).NewToken("user-1", false)
	require.NoError(t, err)

	other, err := New("another-secret", nil, shortTTL, longTTL)
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_RotatedSecretStillAccepted(t *testing.T) {
	oldManager, err := New("old-secret", nil, shortTTL, longTTL)
	require.NoError(t, err)

	token, err := oldManager.NewToken("user-1", false)
	require.NoError(t, err)

	rotated, err := New("new-secret", []string{"old-secret"}, shortTTL, longTTL)
	require.NoError(t, err)

	uid, err := rotated.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	fresh, err := rotated.NewToken("user-1", false)
	require.NoError(t, err)

	_, err = oldManager.Parse(fresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_Malformed(t *testing.T) {
	m := newManager(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Parse(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	m := newManager(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned.Header["kid"] = KeyID(secret)

	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParse_MissingSubject(t *testing.T) {
	m := newManager(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok.Header["kid"] = KeyID(secret)

	token, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("", nil, shortTTL, longTTL)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestTTL(t *testing.T) {
	m := newManager(t)

	assert.Equal(t, shortTTL, m.TTL(false))
	assert.Equal(t, longTTL, m.TTL(true))
}
