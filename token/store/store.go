package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/token"
	"github.com/jrsteele09/estate-client/users"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Storage keys. Both are always written and cleared together.
const (
	TokensKey = "auth_tokens"
	UserKey   = "user_data"
)

// State is everything the store holds for the signed-in user.
type State struct {
	Pair      token.Pair
	User      *users.Profile
	CSRFToken string
}

// Empty reports whether there is no usable credential pair.
func (s State) Empty() bool {
	return s.Pair.IsZero() || s.User == nil
}

// persistedTokens is the on-disk form of TokensKey. The CSRF token lives next
// to the pair it was issued for.
type persistedTokens struct {
	token.Pair
	CSRFToken string `json:"csrf_token,omitempty"`
}

// Store is the process-wide holder of the credential pair and user profile.
// Every write replaces the whole state under one lock, so a reader never sees
// a profile without its matching pair.
type Store struct {
	kv      KV
	log     zerolog.Logger
	nowTime func() time.Time

	mu    sync.RWMutex
	state State
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) { s.nowTime = nowFunc }
}

func New(kv KV, options ...Option) *Store {
	s := &Store{
		kv:      kv,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Save replaces both persisted keys and the in-memory state. The in-memory
// state is updated even when persisting fails; the error is still returned.
func (s *Store) Save(pair token.Pair, user users.Profile, csrfToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Pair: pair, User: &user, CSRFToken: csrfToken}
	return s.persistLocked()
}

// SaveUser replaces only the profile, keeping the current pair.
func (s *Store) SaveUser(user users.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Pair.IsZero() {
		return errors.ErrNotAuthenticated
	}
	s.state.User = &user
	return s.persistLocked()
}

// SetCSRFToken records an anti-forgery token for the current pair.
func (s *Store) SetCSRFToken(csrfToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Pair.IsZero() {
		return errors.ErrNotAuthenticated
	}
	s.state.CSRFToken = csrfToken
	return s.persistLocked()
}

// Load reads the persisted state into memory and returns it. Anything that
// cannot be read or decoded is treated as "nothing stored".
func (s *Store) Load() State {
	loaded := s.read()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = loaded
	return copyState(s.state)
}

// Current returns a snapshot of the in-memory state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Clear erases the persisted keys and the in-memory state. Calling it on an
// already empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	if err := s.kv.Clear(TokensKey, UserKey); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}

// Token implements oauth2.TokenSource over the current pair. A missing or
// stale pair is an error so no authenticated call goes out with it.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	pair := s.state.Pair
	s.mu.RUnlock()

	if pair.IsZero() {
		return nil, errors.ErrNotAuthenticated
	}
	if pair.Expired(s.nowTime()) {
		return nil, errors.ErrTokenExpired
	}
	return pair.OAuth2(), nil
}

// CSRFToken returns the anti-forgery token issued for the current pair, if any.
func (s *Store) CSRFToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CSRFToken
}

var _ oauth2.TokenSource = (*Store)(nil)

func (s *Store) persistLocked() error {
	tokensJSON, err := json.Marshal(persistedTokens{Pair: s.state.Pair, CSRFToken: s.state.CSRFToken})
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	userJSON, err := json.Marshal(s.state.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(map[string][]byte{TokensKey: tokensJSON, UserKey: userJSON}); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

func (s *Store) read() State {
	rawTokens, err := s.kv.Get(TokensKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Warn().Err(err).Msg("stored credentials unreadable, treating as empty")
		}
		return State{}
	}
	rawUser, err := s.kv.Get(UserKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored profile missing, treating as empty")
		return State{}
	}

	var tokens persistedTokens
	if err := json.Unmarshal(rawTokens, &tokens); err != nil {
		s.log.Warn().Err(err).Msg("stored credentials corrupt, treating as empty")
		return State{}
	}
	var user users.Profile
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.log.Warn().Err(err).Msg("stored profile corrupt, treating as empty")
		return State{}
	}
	if tokens.Pair.IsZero() {
		return State{}
	}
	return State{Pair: tokens.Pair, User: &user, CSRFToken: tokens.CSRFToken}
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
