package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/lib/sanitize"
	"finance_service/internal/models"
	"finance_service/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already registered")
)

// Auth event labels reported to the Recorder.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventVerify   = "verify"

	ResultOK     = "ok"
	ResultDenied = "denied"
	ResultError  = "error"
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	hasher      PasswordHasher
	tokens      TokenManager
	notifier    Notifier
	recorder    Recorder
}

type UserSaver interface {
	SaveUser(ctx context.Context, email, name string, passHash []byte) (models.User, error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) bool
}

type TokenManager interface {
	NewToken(userID string, extended bool) (string, error)
	Parse(token string) (string, error)
}

type Notifier interface {
	SendWelcome(ctx context.Context, user models.User) error
}

type Recorder interface {
	AuthEvent(event, result string)
}

type Option func(*Auth)

func WithNotifier(n Notifier) Option {
	return func(a *Auth) {
		a.notifier = n
	}
}

func WithRecorder(r Recorder) Option {
	return func(a *Auth) {
		a.recorder = r
	}
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	hasher PasswordHasher,
	tokens TokenManager,
	opts ...Option,
) *Auth {
	a := &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		hasher:      hasher,
		tokens:      tokens,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Auth) RegisterNewUser(ctx context.Context, email, name, password string) (models.User, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(slog.String("op", op))

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		a.record(EventRegister, ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.usrSaver.SaveUser(ctx, NormalizeEmail(email), sanitize.Text(name), passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already registered")
			a.record(EventRegister, ResultDenied)

			return models.User{}, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		log.Error("failed to save user", sl.Err(err))
		a.record(EventRegister, ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("uid", user.ID))
	a.record(EventRegister, ResultOK)

	if a.notifier != nil {
		if err := a.notifier.SendWelcome(ctx, user); err != nil {
			log.Warn("failed to publish welcome notification", sl.Err(err))
		}
	}

	return user, nil
}

// Login checks the credentials and issues a token. An unknown email and a wrong
// password are reported the same way.
func (a *Auth) Login(ctx context.Context, email, password string, reminder bool) (string, models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			a.record(EventLogin, ResultDenied)

			return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		log.Error("failed to get user", sl.Err(err))
		a.record(EventLogin, ResultError)

		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.hasher.Compare(user.PassHash, password) {
		log.Info("invalid password", slog.String("uid", user.ID))
		a.record(EventLogin, ResultDenied)

		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := a.tokens.NewToken(user.ID, reminder)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		a.record(EventLogin, ResultError)

		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.String("uid", user.ID), slog.Bool("reminder", reminder))
	a.record(EventLogin, ResultOK)

	return token, user, nil
}

// Verify resolves a token to the user it was issued for. The user is looked up
// on every call, so a deleted user's tokens stop working at once.
func (a *Auth) Verify(ctx context.Context, token string) (models.User, error) {
	const op = "auth.Verify"

	log := a.log.With(slog.String("op", op))

	uid, err := a.tokens.Parse(token)
	if err != nil {
		log.Debug("token rejected", sl.Err(err))
		a.record(EventVerify, ResultDenied)

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := a.usrProvider.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("token subject no longer exists", slog.String("uid", uid))
			a.record(EventVerify, ResultDenied)

			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		log.Error("failed to load user", sl.Err(err))
		a.record(EventVerify, ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	a.record(EventVerify, ResultOK)

	return user, nil
}

func (a *Auth) record(event, result string) {
	if a.recorder != nil {
		a.recorder.AuthEvent(event, result)
	}
}
