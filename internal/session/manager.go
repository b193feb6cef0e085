package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clarkmarket/marketctl/internal/api"
)

// Sentinel errors
var (
	// ErrNotAuthenticated is returned when an operation requires a
	// session and none exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoRefreshToken is returned when renewal is attempted without a
	// stored refresh token. The session is left untouched.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrRefreshTokenInvalid is returned when the backend rejects the
	// refresh token. The session has been cleared by the time callers
	// see this error.
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
)

// renewSkew is how close to its exp claim an access token may get
// before WithAuth renews it proactively.
const renewSkew = 30 * time.Second

// renewCall is one in-flight token renewal shared by all concurrent
// callers.
type renewCall struct {
	done  chan struct{}
	token string
	err   error
}

// Manager owns the authenticated session: the token pair, the cached
// profile, and silent renewal. It is the only writer of session state;
// screens and commands get read-only accessors plus WithAuth.
type Manager struct {
	client *api.Client
	store  *Store

	mu            sync.RWMutex
	accessToken   string
	refreshToken  string
	user          *api.User
	authenticated bool

	// sessionAuth marks "authenticated during this process" and is
	// never persisted, mirroring the route-guard flag that lived in
	// sessionStorage.
	sessionAuth bool

	renewMu  sync.Mutex
	inflight *renewCall
}

// NewManager creates a session manager backed by the given API client
// and persisted store.
func NewManager(client *api.Client, store *Store) *Manager {
	return &Manager{
		client: client,
		store:  store,
	}
}

// Hydrate restores the session from persisted state. When tokens and a
// cached profile exist the session is optimistically marked
// authenticated, then the profile is refreshed: a confirmed
// authentication failure clears the session, a transient failure leaves
// it intact.
func (m *Manager) Hydrate(ctx context.Context) error {
	state, err := m.store.Load()
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			log.Warn().Err(err).Msg("clearing corrupt session state")
			m.Logout()
			return nil
		}
		return err
	}

	if state.AccessToken == "" || state.User == nil {
		return nil
	}

	m.mu.Lock()
	m.accessToken = state.AccessToken
	m.refreshToken = state.RefreshToken
	m.user = state.User
	m.authenticated = true
	m.mu.Unlock()

	log.Debug().Str("user", state.User.ID).Msg("session hydrated from disk")

	if _, err := m.FetchProfile(ctx); err != nil {
		if isAuthFailure(err) || errors.Is(err, ErrNoRefreshToken) {
			log.Info().Err(err).Msg("stored credentials rejected, clearing session")
			m.Logout()
			return nil
		}
		// Fail open: a flaky network must not log the user out.
		log.Warn().Err(err).Msg("profile refresh failed during hydration, keeping session")
	}

	return nil
}

// LoginWithCredentials exchanges credentials for a session. On failure
// nothing is persisted and any prior session is untouched. On success
// the tokens and minimal user object are persisted before a best-effort
// full-profile fetch whose failure never rolls back the login.
func (m *Manager) LoginWithCredentials(ctx context.Context, email, password string) (*api.User, error) {
	result, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	m.mutate(func() {
		m.accessToken = result.AccessToken
		m.refreshToken = result.RefreshToken
		user := result.User
		m.user = &user
		m.authenticated = true
		m.sessionAuth = true
	})

	log.Info().Str("user", result.User.ID).Msg("logged in")

	if _, err := m.FetchProfile(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to fetch full profile after login")
	}

	return m.User(), nil
}

// FetchProfile fetches the current profile with the session token,
// renewing once on a 401. On success the cached profile is replaced and
// persisted.
func (m *Manager) FetchProfile(ctx context.Context) (*api.User, error) {
	var user *api.User
	err := m.WithAuth(ctx, func(ctx context.Context, token string) error {
		fetched, err := m.client.Me(ctx, token)
		if err != nil {
			return err
		}
		user = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.setUser(user)
	return user, nil
}

// UpdateProfile sends a partial profile update, renewing once on a 401.
// On success the cached profile is replaced.
func (m *Manager) UpdateProfile(ctx context.Context, patch map[string]any) (*api.User, error) {
	var user *api.User
	err := m.WithAuth(ctx, func(ctx context.Context, token string) error {
		updated, err := m.client.UpdateMe(ctx, token, patch)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.setUser(user)
	return user, nil
}

// WithAuth runs fn with the current access token. On a 401 it performs
// exactly one renewal and retries fn once with the new token. Every
// protected call goes through here rather than re-implementing the
// renew-and-retry pattern.
func (m *Manager) WithAuth(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	m.mu.RLock()
	token := m.accessToken
	m.mu.RUnlock()

	if token == "" {
		return ErrNotAuthenticated
	}

	// Renew ahead of a guaranteed 401 when the token carries an exp
	// claim that is about to pass. Renewal failure here is not fatal,
	// the 401 path below still applies.
	if expiresWithin(token, renewSkew) {
		if renewed, err := m.RenewToken(ctx); err == nil {
			token = renewed
		}
	}

	err := fn(ctx, token)
	if !api.IsUnauthorized(err) {
		return err
	}

	renewed, renewErr := m.RenewToken(ctx)
	if renewErr != nil {
		if errors.Is(renewErr, ErrRefreshTokenInvalid) || errors.Is(renewErr, ErrNoRefreshToken) {
			return fmt.Errorf("authentication failed: %w", renewErr)
		}
		// Transient renewal failure, surface it so the caller can
		// retry later instead of forcing a logout.
		return renewErr
	}

	return fn(ctx, renewed)
}

// RenewToken obtains a new access token using the stored refresh token.
// Concurrent callers share a single in-flight refresh request. A
// backend rejection of the refresh token clears the whole session;
// transient failures leave it untouched so callers can retry.
func (m *Manager) RenewToken(ctx context.Context) (string, error) {
	m.renewMu.Lock()
	if call := m.inflight; call != nil {
		m.renewMu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	call := &renewCall{done: make(chan struct{})}
	m.inflight = call
	m.renewMu.Unlock()

	// The renewal always runs to completion even if the initiating
	// caller goes away; other callers may be waiting on its result.
	call.token, call.err = m.renew(context.WithoutCancel(ctx))
	close(call.done)

	m.renewMu.Lock()
	m.inflight = nil
	m.renewMu.Unlock()

	return call.token, call.err
}

func (m *Manager) renew(ctx context.Context) (string, error) {
	m.mu.RLock()
	refreshToken := m.refreshToken
	m.mu.RUnlock()

	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	pair, err := m.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			log.Info().Int("status", apiErr.StatusCode).Msg("refresh token rejected, logging out")
			m.Logout()
			if apiErr.Message != "" {
				return "", fmt.Errorf("%w: %s", ErrRefreshTokenInvalid, apiErr.Message)
			}
			return "", ErrRefreshTokenInvalid
		}
		log.Warn().Err(err).Msg("token renewal failed, keeping session")
		return "", err
	}

	m.mutate(func() {
		m.accessToken = pair.AccessToken
		if pair.RefreshToken != "" {
			m.refreshToken = pair.RefreshToken
		}
		m.authenticated = true
		m.sessionAuth = true
	})

	log.Debug().Msg("access token renewed")

	return pair.AccessToken, nil
}

// Logout clears the persisted and in-memory session synchronously.
// Afterwards every operation behaves as if no session ever existed.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	m.authenticated = false
	m.sessionAuth = false

	if err := m.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear persisted session")
	}
}

// Token returns the current access token, empty when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken
}

// User returns a copy of the cached profile, nil when anonymous.
func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Authenticated reports whether a session exists.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// SessionAuthenticated reports whether the session was confirmed by the
// backend during this process lifetime, as opposed to hydrated from
// disk.
func (m *Manager) SessionAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionAuth
}

// setUser replaces the cached profile and persists the session.
func (m *Manager) setUser(user *api.User) {
	m.mutate(func() {
		m.user = user
		m.authenticated = true
	})
}

// mutate runs fn and saves the resulting state while still holding the
// state lock, so the persisted file always reflects the mutation that
// produced it rather than whichever mutation finished last.
func (m *Manager) mutate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn()

	state := &State{
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
		User:         m.user,
		IsLoggedIn:   m.authenticated,
	}
	if err := m.store.Save(state); err != nil {
		log.Error().Err(err).Msg("failed to persist session state")
	}
}

// isAuthFailure reports whether err means the stored credentials are
// confirmed invalid, as opposed to a transient failure.
func isAuthFailure(err error) bool {
	return errors.Is(err, ErrRefreshTokenInvalid) || api.IsUnauthorized(err)
}
