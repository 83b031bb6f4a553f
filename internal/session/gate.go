// Package session keeps the current user of the marketplace and scopes queries to it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageKey is the key the current user record is persisted under
const StorageKey = "user"

var (
	ErrNotLoggedIn   = errors.New("login required")
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidRole   = errors.New("role must be user or admin")
)

// Persister stores the serialized current user record
type Persister interface {
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Option alters the default configuration of a Gate
type Option interface {
	apply(*Gate)
}

type optionFunc func(g *Gate)

func (f optionFunc) apply(g *Gate) { f(g) }

// WithClock replaces time.Now as the source of registration timestamps
func WithClock(now func() time.Time) Option {
	return optionFunc(func(g *Gate) {
		g.now = now
	})
}

// WithIDGenerator replaces uuid.NewString as the source of new user ids
func WithIDGenerator(newID func() string) Option {
	return optionFunc(func(g *Gate) {
		g.newID = newID
	})
}

// Gate holds at most one current user.
// Anonymous --Login/Register--> Authenticated --Logout--> Anonymous
type Gate struct {
	logger    *zap.SugaredLogger
	persister Persister
	now       func() time.Time
	newID     func() string

	mu   sync.RWMutex
	user *User
}

// Open returns a Gate restoring the user record saved by a previous session.
// A record that cannot be decoded, or lacks an email or a known role, is discarded
// and the session starts anonymous.
func Open(ctx context.Context, logger *zap.SugaredLogger, persister Persister, opts ...Option) (*Gate, error) {
	g := &Gate{
		logger:    logger,
		persister: persister,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt.apply(g)
	}

	data, found, err := persister.Load(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("loading session record: %w", err)
	}
	if !found {
		logger.Debug("No stored session, starting anonymous")
		return g, nil
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		logger.Warnf("Discarding unreadable session record: %v", err)
		return g, nil
	}
	if strings.TrimSpace(u.Email) == "" || !u.Role.Valid() {
		logger.Warnf("Discarding session record with email %q and role %q", u.Email, u.Role)
		return g, nil
	}
	g.user = &u
	logger.Infof("Restored session of %s", u.Email)

	return g, nil
}

// Current returns the current user, false when the session is anonymous
func (g *Gate) Current() (User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.user == nil {
		return User{}, false
	}
	return *g.user, true
}

// Login makes u the current user and persists it.
// The session is left unchanged when the record cannot be persisted.
func (g *Gate) Login(ctx context.Context, u User) (User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return User{}, ErrEmailRequired
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}
	if u.ID == "" {
		u.ID = g.newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = g.now()
	}

	if err := g.establish(ctx, u); err != nil {
		return User{}, err
	}

	g.logger.Infof("Logged in %s (%s)", u.Email, u.Role)

	return u, nil
}

// Register creates a user with a fresh id and the user role, makes it current and persists it
func (g *Gate) Register(ctx context.Context, r Registration) (User, error) {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return User{}, ErrEmailRequired
	}

	u := User{
		ID:        g.newID(),
		Name:      strings.TrimSpace(r.Name),
		Email:     email,
		Role:      RoleUser,
		Phone:     strings.TrimSpace(r.Phone),
		CreatedAt: g.now(),
	}

	if err := g.establish(ctx, u); err != nil {
		return User{}, err
	}

	g.logger.Infof("Registered %s with id %s", u.Email, u.ID)

	return u, nil
}

func (g *Gate) establish(ctx context.Context, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.persister.Save(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("saving session record: %w", err)
	}
	g.user = &u

	return nil
}

// Logout clears the current user and the persisted record
func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.persister.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("deleting session record: %w", err)
	}
	if g.user != nil {
		g.logger.Infof("Logged out %s", g.user.Email)
	}
	g.user = nil

	return nil
}
