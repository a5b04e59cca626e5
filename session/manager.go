// Package session owns the signed-in user's lifecycle: restoring it at
// start-up, logging in and out, and keeping the access token fresh.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/estate-client/auth"
	"github.com/jrsteele09/estate-client/authstate"
	ierrors "github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/token"
	"github.com/jrsteele09/estate-client/token/refresh"
	"github.com/jrsteele09/estate-client/token/store"
	"github.com/jrsteele09/estate-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AuthAPI is the part of the auth client whose results reach the store.
type AuthAPI interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (*auth.LoginResult, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	Me(ctx context.Context) (*users.Profile, error)
	CSRFToken(ctx context.Context) (string, error)
	UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (*users.Profile, error)
}

var _ AuthAPI = (*auth.Client)(nil)

const defaultRefreshTimeout = 30 * time.Second

// Manager is constructed once at start-up and shared by everything that needs
// the session. It is the only writer of the token store.
type Manager struct {
	store     *store.Store
	auth      AuthAPI
	machine   *authstate.Machine
	scheduler *refresh.Scheduler
	log       zerolog.Logger
	nowTime   func() time.Time

	margin         time.Duration
	refreshTimeout time.Duration
	schedulerOpts  []refresh.Option

	initOnce sync.Once

	mu       sync.Mutex
	gen      uint64 // bumped on every credential change
	endHooks []func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
		m.schedulerOpts = append(m.schedulerOpts, refresh.WithNowTime(nowFunc))
	}
}

// WithAfterFunc replaces the refresh timer factory (primarily for testing)
func WithAfterFunc(af refresh.AfterFunc) Option {
	return func(m *Manager) {
		m.schedulerOpts = append(m.schedulerOpts, refresh.WithAfterFunc(af))
	}
}

// WithRefreshMargin sets how long before expiry the token is renewed.
func WithRefreshMargin(d time.Duration) Option {
	return func(m *Manager) { m.margin = d }
}

// WithRefreshTimeout bounds a background refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *Manager) { m.refreshTimeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
		m.schedulerOpts = append(m.schedulerOpts, refresh.WithLogger(l))
	}
}

// NewManager wires a manager over st and client. Nothing happens until
// Initialize or Login is called.
func NewManager(st *store.Store, client AuthAPI, options ...Option) (*Manager, error) {
	if st == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if client == nil {
		return nil, errors.New("[NewManager] auth client is required")
	}

	m := &Manager{
		store:          st,
		auth:           client,
		machine:        authstate.NewMachine(),
		log:            zerolog.Nop(),
		nowTime:        time.Now,
		margin:         5 * time.Minute,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range options {
		opt(m)
	}
	m.scheduler = refresh.NewScheduler(m.margin, m.refreshDue, m.schedulerOpts...)
	return m, nil
}

// OnSessionEnd registers f to run whenever the session ends locally, whether
// by logout or by a failed refresh. Conversations use it to drop their state.
func (m *Manager) OnSessionEnd(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endHooks = append(m.endHooks, f)
}

// Subscribe forwards to the state machine.
func (m *Manager) Subscribe(l authstate.Listener) {
	m.machine.Subscribe(l)
}

// Initialize restores the persisted session. It runs once; later calls
// return the current state.
//
// A stored pair that is still valid is checked against the backend; one that
// has expired gets exactly one refresh attempt and is never presented to the
// backend as-is. Any failure clears the store.
func (m *Manager) Initialize(ctx context.Context) authstate.State {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
	return m.machine.Current()
}

func (m *Manager) initialize(ctx context.Context) {
	m.machine.Dispatch(authstate.InitStarted)
	gen := m.generation()

	stored := m.store.Load()
	if stored.Empty() {
		m.log.Debug().Msg("no stored credentials")
		m.machine.Dispatch(authstate.NoStoredCredentials)
		return
	}

	if stored.Pair.Expired(m.nowTime()) {
		m.log.Debug().Time("expired_at", stored.Pair.ExpiresAt).Msg("stored access token expired, refreshing")
		pair, err := m.auth.Refresh(ctx, stored.Pair.RefreshToken)
		if err != nil {
			m.log.Warn().Err(err).Msg("refresh of stored session failed")
			if m.endSessionIf(gen) {
				m.machine.Dispatch(authstate.RefreshFailed)
			}
			return
		}
		if !m.apply(gen, pair, *stored.User, stored.CSRFToken) {
			return
		}
		m.machine.Dispatch(authstate.RefreshSucceeded)
		return
	}

	profile, err := m.auth.Me(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("stored session rejected")
		if m.endSessionIf(gen) {
			m.machine.Dispatch(authstate.SessionInvalid)
		}
		return
	}

	csrf := stored.CSRFToken
	if fresh, err := m.auth.CSRFToken(ctx); err != nil {
		m.log.Warn().Err(err).Msg("could not fetch csrf token")
	} else {
		csrf = fresh
	}

	if !m.apply(gen, stored.Pair, *profile, csrf) {
		return
	}
	m.machine.Dispatch(authstate.SessionRestored)
}

// Login authenticates, persists the result and arms the refresh timer.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (*users.Profile, error) {
	m.machine.Dispatch(authstate.LoginStarted)

	result, err := m.auth.Login(ctx, email, password, rememberMe)
	if err != nil {
		m.machine.Dispatch(authstate.LoginFailed)
		return nil, err
	}

	if !m.apply(m.generation(), result.Pair, result.User, result.CSRFToken) {
		m.machine.Dispatch(authstate.LoginFailed)
		return nil, errors.Wrap(ierrors.ErrSessionChanged, "[Login]")
	}
	if result.CSRFToken == "" {
		m.refreshCSRF(ctx)
	}
	m.machine.Dispatch(authstate.LoginSucceeded)

	user := result.User
	return &user, nil
}

// Logout ends the session. The server is told on a best-effort basis; local
// state is cleared whatever the network does.
func (m *Manager) Logout(ctx context.Context) {
	if !m.store.Current().Pair.IsZero() {
		if err := m.auth.Logout(ctx); err != nil {
			m.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	m.endSession()
	m.machine.Dispatch(authstate.LogoutRequested)
}

// RefreshNow exchanges the stored refresh token for a new pair. On failure
// the session is ended.
func (m *Manager) RefreshNow(ctx context.Context) error {
	gen := m.generation()
	current := m.store.Current()
	if current.Empty() {
		return errors.Wrap(ierrors.ErrNoCredentials, "[RefreshNow]")
	}

	pair, err := m.auth.Refresh(ctx, current.Pair.RefreshToken)
	if err != nil {
		if m.endSessionIf(gen) {
			m.log.Warn().Err(err).Msg("token refresh failed, session ended")
			m.machine.Dispatch(authstate.RefreshFailed)
		}
		return err
	}

	if !m.apply(gen, pair, *current.User, current.CSRFToken) {
		return nil
	}
	m.log.Debug().Time("expires_at", pair.ExpiresAt).Msg("access token refreshed")
	m.machine.Dispatch(authstate.RefreshSucceeded)
	return nil
}

func (m *Manager) refreshDue() {
	ctx, cancel := context.WithTimeout(context.Background(), m.refreshTimeout)
	defer cancel()
	_ = m.RefreshNow(ctx)
}

// UpdateProfile sends update and merges the server's answer into the stored
// profile. Fields the server does not return are kept.
func (m *Manager) UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (*users.Profile, error) {
	updated, err := m.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}

	merged, err := m.mergeProfile(*updated)
	if err != nil {
		return nil, err
	}
	m.machine.Dispatch(authstate.ProfileUpdated)
	return &merged, nil
}

func (m *Manager) mergeProfile(updated users.Profile) (users.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.store.Current()
	if current.User == nil {
		return users.Profile{}, errors.Wrap(ierrors.ErrNotAuthenticated, "[UpdateProfile] session ended during update")
	}
	merged := current.User.Merge(updated)
	if err := m.store.SaveUser(merged); err != nil {
		m.log.Warn().Err(err).Msg("could not persist updated profile")
	}
	return merged, nil
}

// Snapshot is a consistent view of the session for readers such as the guard.
type Snapshot struct {
	State authstate.State
	User  *users.Profile
}

func (s Snapshot) IsLoading() bool       { return s.State == authstate.Loading }
func (s Snapshot) IsAuthenticated() bool { return s.State == authstate.LoggedIn }

func (m *Manager) Snapshot() Snapshot {
	return Snapshot{State: m.machine.Current(), User: m.store.Current().User}
}

// User returns the signed-in profile, or nil.
func (m *Manager) User() *users.Profile {
	return m.store.Current().User
}

// RefreshDueAt reports when the next proactive refresh fires.
func (m *Manager) RefreshDueAt() (time.Time, bool) {
	return m.scheduler.DueAt()
}

// Close stops the refresh timer without touching stored credentials.
func (m *Manager) Close() {
	m.scheduler.Cancel()
}

func (m *Manager) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// apply installs a new pair if no other credential change happened since gen
// was read, then re-arms the timer for it.
func (m *Manager) apply(gen uint64, pair token.Pair, user users.Profile, csrf string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		m.log.Debug().Msg("credentials changed while waiting on the backend, dropping result")
		return false
	}
	m.scheduler.Cancel()
	m.storeSave(pair, user, csrf)
	m.scheduler.Schedule(pair)
	m.gen++
	return true
}

func (m *Manager) refreshCSRF(ctx context.Context) {
	csrf, err := m.auth.CSRFToken(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("could not fetch csrf token")
		return
	}
	if err := m.store.SetCSRFToken(csrf); err != nil {
		m.log.Warn().Err(err).Msg("could not store csrf token")
	}
}

func (m *Manager) storeSave(pair token.Pair, user users.Profile, csrf string) {
	if err := m.store.Save(pair, user, csrf); err != nil {
		m.log.Warn().Err(err).Msg("could not persist credentials, keeping them in memory")
	}
}

func (m *Manager) endSession() {
	m.mu.Lock()
	m.endSessionLocked()
}

// endSessionIf ends the session only if no credential change happened since
// gen was read. It reports whether the session was ended.
func (m *Manager) endSessionIf(gen uint64) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.log.Debug().Msg("credentials changed while waiting on the backend, keeping them")
		return false
	}
	m.endSessionLocked()
	return true
}

// endSessionLocked is entered with m.mu held and releases it before running
// the end hooks.
func (m *Manager) endSessionLocked() {
	m.scheduler.Cancel()
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("could not clear stored credentials")
	}
	m.gen++
	hooks := append([]func(){}, m.endHooks...)
	m.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}
