package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-lms-client/api"
	interrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/internal/utils"
	"github.com/jrsteele09/go-lms-client/token"
	"github.com/jrsteele09/go-lms-client/users"
)

// State is the session lifecycle state. StateLoading is the only initial
// state; it resolves to Anonymous or Authenticated exactly once, during
// Bootstrap. Reporting "loading" to consumers suppresses premature redirects.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Snapshot is the published session state. User is set only when
// authenticated.
type Snapshot struct {
	State State
	User  *users.User
}

func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

func (s Snapshot) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.Role == users.RoleAdmin
}

func (s Snapshot) IsStudent() bool {
	return s.IsAuthenticated() && s.User.Role == users.RoleStudent
}

// Authenticator is the backend surface the manager needs. *api.Client
// satisfies it in production; tests and demo mode inject a fake.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, reg users.Registration) error
	Me(ctx context.Context) (*users.User, error)
	ForgotPassword(ctx context.Context, email string) error
}

// Notifier surfaces the outcome of session operations to the user. Every
// operation other than Bootstrap reports through it; expected failures are
// notifications plus a boolean result, never errors the caller must handle.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// Manager owns the authenticated-user identity for the lifetime of the
// process. It is the single writer of session state; all mutation funnels
// through its operations, and every change is published synchronously to
// subscribers.
type Manager struct {
	store    token.Store
	backend  Authenticator
	notifier Notifier
	logger   zerolog.Logger

	lock         sync.Mutex
	snap         Snapshot
	subscribers  map[int]func(Snapshot)
	nextSubID    int
	bootstrapped bool
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) ManagerOption {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New initializes a Manager with required dependencies.
func New(store token.Store, backend Authenticator, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[session.New] store is required")
	}
	if backend == nil {
		return nil, errors.New("[session.New] backend is required")
	}

	manager := &Manager{
		store:       store,
		backend:     backend,
		notifier:    NopNotifier{},
		logger:      zerolog.Nop(),
		snap:        Snapshot{State: StateLoading},
		subscribers: make(map[int]func(Snapshot)),
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

// Snapshot returns the current published state.
func (m *Manager) Snapshot() Snapshot {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.snap
}

// Subscribe registers fn for synchronous invocation on every state change.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.lock.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.lock.Unlock()

	return func() {
		m.lock.Lock()
		delete(m.subscribers, id)
		m.lock.Unlock()
	}
}

// Bootstrap resolves any persisted token into a session. It runs once per
// process; later calls are no-ops. Until it completes, the state stays
// StateLoading.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.lock.Lock()
	if m.bootstrapped {
		m.lock.Unlock()
		return
	}
	m.bootstrapped = true
	m.lock.Unlock()

	pair, ok := m.store.Get()
	if !ok || pair.AccessToken == "" {
		m.setState(StateAnonymous, nil)
		return
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("bootstrap: persisted token unusable")
		m.store.Clear()
		m.setState(StateAnonymous, nil)
		return
	}
	m.setState(StateAuthenticated, user)
}

// Login authenticates against the backend. On success the returned token
// pair is persisted and the session becomes Authenticated. On failure the
// session and store are left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.logger.Debug().Err(err).Str("email", email).Msg("login failed")
		m.notifier.Error(notificationMessage(err, "Invalid email or password"))
		return false
	}

	m.store.Set(token.Pair{AccessToken: resp.Access, RefreshToken: resp.Refresh})
	m.setState(StateAuthenticated, utils.Ptr(resp.User))
	m.notifier.Success("Login successful!")
	return true
}

// Register creates an account. It does not authenticate the caller, and the
// fields are validated before any network call is made.
func (m *Manager) Register(ctx context.Context, reg users.Registration) bool {
	if err := reg.Validate(); err != nil {
		m.notifier.Error(err.Error())
		return false
	}
	if err := m.backend.Register(ctx, reg); err != nil {
		m.logger.Debug().Err(err).Msg("registration failed")
		m.notifier.Error(notificationMessage(err, "Registration failed"))
		return false
	}
	m.notifier.Success("Registration successful! Please login.")
	return true
}

// Logout destroys the session unconditionally. It is synchronous, never
// fails, and may be called at any time regardless of pending operations.
func (m *Manager) Logout() {
	m.store.Clear()
	m.setState(StateAnonymous, nil)
	m.notifier.Success("Logged out successfully")
}

// ForgotPassword requests a reset email. The address is validated before any
// network call. The session is unaffected either way.
func (m *Manager) ForgotPassword(ctx context.Context, email string) bool {
	if err := users.ValidateEmail(email); err != nil {
		m.notifier.Error(err.Error())
		return false
	}
	if err := m.backend.ForgotPassword(ctx, email); err != nil {
		m.logger.Debug().Err(err).Msg("password reset request failed")
		m.notifier.Error(notificationMessage(err, "Failed to send reset email"))
		return false
	}
	m.notifier.Success("Password reset email sent!")
	return true
}

// Expire tears the session down after an unrecoverable token refresh
// failure. It is the pipeline's session-expired hook and is idempotent.
func (m *Manager) Expire() {
	m.store.Clear()
	if m.setState(StateAnonymous, nil) {
		m.logger.Debug().Err(interrors.ErrSessionExpired).Msg("session torn down")
		m.notifier.Error("Session expired. Please log in again.")
	}
}

// setState publishes the new state to all subscribers, synchronously, in the
// caller's goroutine. Returns whether the state actually changed.
func (m *Manager) setState(state State, user *users.User) bool {
	m.lock.Lock()
	if m.snap.State == state && m.snap.User == user {
		m.lock.Unlock()
		return false
	}
	m.snap = Snapshot{State: state, User: user}
	snap := m.snap
	fns := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.lock.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return true
}

// notificationMessage prefers the backend's own error message and falls back
// to a generic one.
func notificationMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
