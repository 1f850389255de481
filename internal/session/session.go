package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/mealplanner/internal/constants"
	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/logger"
)

// ErrSessionInvalid is returned by Token when there is no usable token.
var ErrSessionInvalid = apperrors.ErrSessionInvalid

// EventType is the kind of session change.
type EventType int

const (
	EventLogin EventType = iota
	EventLogout
	EventExpired
)

func (e EventType) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	case EventExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to subscribers after the session changes.
type Event struct {
	Type     EventType
	Username string
}

// Manager owns the persisted session. It is safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	store     Store
	now       func() time.Time
	listeners map[int]func(Event)
	nextID    int
}

// NewManager returns a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:     store,
		now:       time.Now,
		listeners: make(map[int]func(Event)),
	}
}

// SetClock replaces the time source used for expiry checks.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// StoreName describes where the session is persisted.
func (m *Manager) StoreName() string {
	return m.store.Name()
}

// Subscribe registers fn for session events and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) notify(ev Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (m *Manager) load() Session {
	s, err := m.store.Load()
	if err != nil {
		logger.Warn("Failed to read session", "store", m.store.Name(), "error", err)
		return Session{}
	}
	return s
}

// LoggedIn reports whether a token is persisted. It does not check expiry;
// an expired token is only discovered by the next authenticated call.
func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load().Token != ""
}

// Username returns the stored display name, if any.
func (m *Manager) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load().Username
}

// Role is sent with recipe queries: "user" when a token is present.
func (m *Manager) Role() string {
	if m.LoggedIn() {
		return constants.RoleUser
	}
	return constants.RoleAnonymous
}

// Login persists a new session and notifies subscribers.
func (m *Manager) Login(token, username string) error {
	if token == "" {
		return fmt.Errorf("login response did not include a token")
	}
	m.mu.Lock()
	err := m.store.Save(Session{Token: token, Username: username})
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	logger.Info("Session started", "username", username)
	m.notify(Event{Type: EventLogin, Username: username})
	return nil
}

// Logout removes the persisted session and notifies subscribers.
func (m *Manager) Logout() error {
	m.mu.Lock()
	username := m.load().Username
	err := m.store.Clear()
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.notify(Event{Type: EventLogout, Username: username})
	return nil
}

// Token returns the bearer token for an authenticated call. A missing,
// malformed or expired token yields ErrSessionInvalid, and a token that
// was present is removed from persistence first.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	s := m.load()
	if s.Token == "" {
		m.mu.Unlock()
		return "", ErrSessionInvalid
	}

	exp, err := ExpiresAt(s.Token)
	switch {
	case err != nil:
		logger.Warn("Discarding unreadable session token", "error", err)
	case !exp.IsZero() && m.now().After(exp):
		logger.Info("Session token expired", "expired_at", exp)
	default:
		m.mu.Unlock()
		return s.Token, nil
	}

	if clearErr := m.store.Clear(); clearErr != nil {
		logger.Error("Failed to clear expired session", "error", clearErr)
	}
	m.mu.Unlock()
	m.notify(Event{Type: EventExpired, Username: s.Username})
	return "", ErrSessionInvalid
}

// OptionalToken returns a valid token or "" without treating absence as
// an error. Used by endpoints that accept but do not require auth.
func (m *Manager) OptionalToken() string {
	if !m.LoggedIn() {
		return ""
	}
	token, err := m.Token()
	if err != nil {
		return ""
	}
	return token
}

// ExpiresAt decodes the exp claim without verifying the signature. A
// token without exp returns the zero time.
func ExpiresAt(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
