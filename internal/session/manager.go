// Package session owns the authenticated-session state of the client: who
// is signed in, with what token, and whether a transition is in flight. The
// Manager is the single writer; everything else observes snapshots or
// subscribes to change notifications.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/farmtrack/mobile-core/internal/api"
	"github.com/farmtrack/mobile-core/internal/bus"
	"github.com/farmtrack/mobile-core/internal/credstore"
	"github.com/farmtrack/mobile-core/internal/model"
	"github.com/farmtrack/mobile-core/internal/token"
)

// State is the session aggregate visible to consumers. Invariants, held at
// every observable point:
//
//   - IsAuthenticated implies Token != "" and User != nil.
//   - !IsAuthenticated implies User == nil.
//   - IsLoading only during the startup restore or an in-flight
//     login/logout; never in steady state.
//   - UserRole equals User.PrimaryRole() when User != nil, "" otherwise.
type State struct {
	User            *model.User
	Token           string
	IsLoading       bool
	IsAuthenticated bool
	UserRole        string
}

// Manager is the sole owner of session State. Construct exactly one per
// process and inject it into consumers; recreating managers per screen
// leaks bus subscriptions.
//
// Login and Logout are not serialized against each other. Callers are
// expected to disable the competing action while IsLoading is true; the
// manager does not queue overlapping login/logout calls.
type Manager struct {
	store credstore.Store
	api   *api.Client
	now   func() time.Time
	log   *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for token validity checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger overrides the logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates the session manager and registers its unauthorized
// handler on the bus. The subscription lives for the life of the process;
// it is registered here, once, so that consumer rebuilds can never stack
// duplicate handlers.
func NewManager(store credstore.Store, client *api.Client, b *bus.Bus, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		api:   client,
		now:   time.Now,
		log:   slog.Default(),
		state: State{IsLoading: true},
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	b.Subscribe(bus.EventUnauthorized, func(reason string) {
		m.log.Info("session invalidated by server", "reason", reason)
		m.Logout(context.Background())
	})
	return m
}

// State returns a snapshot of the current session state. The User pointer is
// shared but the record is immutable by contract.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a state-change callback and returns a function that
// removes it. The callback runs synchronously after each transition with the
// new snapshot.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// setState applies the new state under the lock, then notifies subscribers
// outside it so a callback can safely read State().
func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	fns := m.subscribersLocked()
	m.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// subscribersLocked snapshots the callback set. Caller holds m.mu.
func (m *Manager) subscribersLocked() []func(State) {
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns
}

// Restore loads the persisted session at startup. It always terminates with
// IsLoading false, in either an authenticated or a clean unauthenticated
// state; a broken persisted session degrades to unauthenticated rather than
// surfacing an error.
func (m *Manager) Restore(ctx context.Context) {
	tok, err := m.store.Get(ctx, credstore.KeyAuthToken)
	if errors.Is(err, credstore.ErrNotFound) {
		m.setState(State{})
		return
	}
	if err != nil {
		m.log.Warn("restore: token read failed", "error", err)
		m.setState(State{})
		return
	}

	if !token.IsValid(tok, m.now()) {
		// Expired or malformed: run the full sign-out, remote call included,
		// so the server can drop the token too.
		m.Logout(ctx)
		return
	}

	userJSON, err := m.store.Get(ctx, credstore.KeyUserInfo)
	if err != nil {
		// A valid token without a user record means a partial write (the
		// process died between login writes). Never guess a user; clean up
		// and start unauthenticated.
		m.log.Warn("restore: user record missing, clearing session")
		m.clearStorage(ctx)
		m.setState(State{})
		return
	}
	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		m.log.Warn("restore: user record corrupt, clearing session", "error", err)
		m.clearStorage(ctx)
		m.setState(State{})
		return
	}

	m.setState(State{
		User:            &user,
		Token:           tok,
		IsAuthenticated: true,
		UserRole:        user.PrimaryRole(),
	})
}

// Login exchanges credentials for a session. On failure the error is one of
// *api.InvalidCredentialsError, *api.NetworkError or *transport.HTTPError
// and the state is left as it was, apart from IsLoading returning to false.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setLoading(true)

	data, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.setLoading(false)
		return err
	}

	user := data.User
	role := user.PrimaryRole()
	if err := m.persist(ctx, data.Token, &user, role); err != nil {
		m.setLoading(false)
		return err
	}

	m.setState(State{
		User:            &user,
		Token:           data.Token,
		IsAuthenticated: true,
		UserRole:        role,
	})
	return nil
}

// Logout tears the session down: best-effort remote invalidation, then
// unconditional local cleanup. It never fails and is idempotent; calling it
// while already signed out, or twice in overlapping fashion, lands in the
// same terminal state.
func (m *Manager) Logout(ctx context.Context) {
	m.setLoading(true)

	// Read the token from storage, not from memory, so a logout racing the
	// startup restore or an unauthorized event still targets the right
	// credential.
	tok, err := m.store.Get(ctx, credstore.KeyAuthToken)
	if err == nil && tok != "" {
		if rerr := m.api.Logout(ctx, tok); rerr != nil {
			m.log.Warn("logout: remote call failed", "error", rerr)
		}
	}

	m.clearStorage(ctx)
	m.setState(State{})
}

// IsTokenValid reports whether the in-memory token decodes and has not
// expired. Pure read; safe at any time, including mid-transition.
func (m *Manager) IsTokenValid() bool {
	s := m.State()
	if s.Token == "" {
		return false
	}
	return token.IsValid(s.Token, m.now())
}

// persist writes the three session keys. The role write is skipped when the
// user has no role. The writes are not atomic as a group; Restore defends
// against a partial write by falling back to unauthenticated.
func (m *Manager) persist(ctx context.Context, tok string, user *model.User, role string) error {
	if err := m.store.Set(ctx, credstore.KeyAuthToken, tok); err != nil {
		return err
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, credstore.KeyUserInfo, string(userJSON)); err != nil {
		return err
	}
	if role != "" {
		if err := m.store.Set(ctx, credstore.KeyUserRole, role); err != nil {
			return err
		}
	}
	return nil
}

// clearStorage deletes the three session keys. Deleting an absent key is a
// no-op, which is what makes overlapping logouts harmless.
func (m *Manager) clearStorage(ctx context.Context) {
	for _, key := range []string{credstore.KeyAuthToken, credstore.KeyUserInfo, credstore.KeyUserRole} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.log.Warn("session: credential delete failed", "key", key, "error", err)
		}
	}
}

// setLoading flips only IsLoading, leaving every other field untouched so a
// failed login cannot clobber an existing session. The mutation happens in
// place under a single lock hold, so a concurrent transition can never be
// overwritten by a stale snapshot.
func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.state.IsLoading = v
	s := m.state
	fns := m.subscribersLocked()
	m.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
