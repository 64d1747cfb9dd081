// Package auth holds the single mock user session of a storefront session.
// Login and register are stubs: they wait a fixed delay and succeed unless a
// password was registered for the email and does not match.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"julianmorley.ca/con-plar/storefront/pkg/clock"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	DefaultDelay = time.Second

	// FailureMessage is shown for every login or register failure
	FailureMessage = "Authentication failed."
)

var (
	// ErrAuthFailed is the only error login and register report
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidSettings  = errors.New("invalid preferences")
)

var validate = validator.New()

// MockUser is the account every session starts signed in as
func MockUser() models.User {
	return models.User{
		ID:     1,
		Name:   "John Doe",
		Email:  "john.doe@example.com",
		Avatar: "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg?auto=compress&cs=tinysrgb&w=100",
		Addresses: []models.Address{
			{ID: 1, Type: "Home", Street: "123 Main St", City: "New York", State: "NY", ZipCode: "10001", Country: "USA", IsDefault: true},
			{ID: 2, Type: "Work", Street: "456 Business Ave", City: "New York", State: "NY", ZipCode: "10002", Country: "USA"},
		},
		Preferences: models.Preferences{
			Currency:      "USD",
			Language:      "English",
			Notifications: models.Notifications{Email: true, Push: true},
			DefaultView:   "grid",
		},
	}
}

type account struct {
	name string
	hash []byte
}

type Options struct {
	Clock  clock.Clock
	Delay  time.Duration
	Logger *slog.Logger
}

type Store struct {
	mu       sync.RWMutex
	session  models.AuthSession
	accounts map[string]account

	clock clock.Clock
	delay time.Duration
	log   *slog.Logger
}

func NewStore(opts Options) *Store {
	s := &Store{
		accounts: make(map[string]account),
		clock:    opts.Clock,
		delay:    opts.Delay,
		log:      opts.Logger,
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	user := MockUser()
	s.session = models.AuthSession{User: &user, IsAuthenticated: true}
	return s
}

func (s *Store) Session() models.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.session)
}

// Login signs in after the simulated delay. On failure the session is unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (models.AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return s.Session(), ErrAuthFailed
	}

	if err := clock.Sleep(ctx, s.clock, s.delay); err != nil {
		s.log.Info("login abandoned", "error", err)
		return s.Session(), ErrAuthFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := MockUser()
	if acct, ok := s.accounts[email]; ok {
		if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
			s.log.Info("login rejected", "email", email)
			return copySession(s.session), ErrAuthFailed
		}
		user.Name = acct.name
		user.Email = email
	}

	s.session = models.AuthSession{User: &user, IsAuthenticated: true}
	return copySession(s.session), nil
}

// Register creates the account and signs it in after the simulated delay
func (s *Store) Register(ctx context.Context, name, email, password string) (models.AuthSession, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return s.Session(), ErrAuthFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return s.Session(), ErrAuthFailed
	}

	if err := clock.Sleep(ctx, s.clock, s.delay); err != nil {
		s.log.Info("registration abandoned", "error", err)
		return s.Session(), ErrAuthFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[email] = account{name: name, hash: hash}

	user := MockUser()
	user.Name = name
	user.Email = email
	s.session = models.AuthSession{User: &user, IsAuthenticated: true}
	return copySession(s.session), nil
}

func (s *Store) Logout() models.AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.AuthSession{}
	return copySession(s.session)
}

// UpdatePreferences replaces the session with one carrying prefs
func (s *Store) UpdatePreferences(prefs models.Preferences) (models.AuthSession, error) {
	if err := validate.Struct(prefs); err != nil {
		return s.Session(), errors.Join(ErrInvalidSettings, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.IsAuthenticated || s.session.User == nil {
		return copySession(s.session), ErrNotAuthenticated
	}

	next := copySession(s.session)
	next.User.Preferences = prefs
	s.session = next
	return copySession(s.session), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copySession(s models.AuthSession) models.AuthSession {
	if s.User == nil {
		return models.AuthSession{IsAuthenticated: s.IsAuthenticated}
	}
	user := *s.User
	user.Addresses = slices.Clone(s.User.Addresses)
	return models.AuthSession{User: &user, IsAuthenticated: s.IsAuthenticated}
}
