// Package session owns the authenticated session and the account profile of
// the current user. Store operations call the backend through the API
// client, validate the response, persist token data and report every outcome
// to a notify.Notifier. Failures never leave partially applied state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slotlist/slotlist/frontend/go-client/internal/acl"
	"github.com/slotlist/slotlist/frontend/go-client/internal/api"
	"github.com/slotlist/slotlist/frontend/go-client/internal/notify"
	"github.com/slotlist/slotlist/frontend/go-client/internal/storage"
	"github.com/slotlist/slotlist/frontend/go-client/internal/tokens"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/metrics"
)

// API is the subset of *api.Client the store needs.
type API interface {
	GetLoginRedirectURL(ctx context.Context) (*api.Response, error)
	PerformLogin(ctx context.Context, payload map[string]any) (*api.Response, error)
	RefreshToken(ctx context.Context) (*api.Response, error)
	GetAccountDetails(ctx context.Context) (*api.Response, error)
	EditAccount(ctx context.Context, payload map[string]any) (*api.Response, error)
	SetAuthorization(token string)
	ClearAuthorization()
}

// Navigator receives the pending redirect once a token is installed.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type Option func(*Store)

func WithNavigator(n Navigator) Option {
	return func(s *Store) {
		if n != nil {
			s.nav = n
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

type Store struct {
	api      API
	storage  storage.Store
	acl      *acl.ACL
	notifier notify.Notifier
	nav      Navigator
	now      func() time.Time
	log      *logger.Logger

	mu               sync.RWMutex
	loggedIn         bool
	loginRedirectURL string
	token            string
	decoded          *tokens.Claims
	refreshing       bool
	details          map[string]any
}

func New(client API, st storage.Store, permissions *acl.ACL, n notify.Notifier, opts ...Option) *Store {
	if permissions == nil {
		permissions = acl.New()
	}
	s := &Store{
		api:      client,
		storage:  st,
		acl:      permissions,
		notifier: n,
		now:      time.Now,
		log:      logger.Named("session"),
	}
	s.nav = NavigatorFunc(func(path string) { s.log.Infof("redirect to %s", path) })
	for _, o := range opts {
		o(s)
	}
	return s
}

// fail logs err and raises a danger alert "<text> - <detail>".
func (s *Store) fail(op, text string, err error) error {
	s.log.Errorf("%s: %v", op, err)
	metrics.SessionEvents.WithLabelValues(op + "_failed").Inc()
	s.notifier.ShowAlert(notify.Alert{
		Variant: notify.Danger,
		Message: fmt.Sprintf("%s - %s", text, api.Detail(err)),
	})
	return err
}

// GetLoginRedirectURL fetches the Steam login URL unless one is cached.
func (s *Store) GetLoginRedirectURL(ctx context.Context) error {
	if s.LoginRedirectURL() != "" {
		return nil
	}
	out, err := api.Decode[api.LoginRedirectResponse](s.api.GetLoginRedirectURL(ctx))
	if err != nil {
		return s.fail("getLoginRedirectURL", msgLoginRedirectError, err)
	}
	s.mu.Lock()
	s.loginRedirectURL = out.URL
	s.mu.Unlock()
	return nil
}

// PerformLogin exchanges the login callback payload for a session token.
func (s *Store) PerformLogin(ctx context.Context, payload map[string]any) error {
	s.notifier.StartWorking(msgPerformLogin)
	defer s.notifier.StopWorking()

	out, err := api.Decode[api.TokenResponse](s.api.PerformLogin(ctx, payload))
	if err != nil {
		return s.fail("performLogin", msgPerformLoginError, err)
	}
	claims, err := tokens.Decode(out.Token)
	if err != nil {
		return s.fail("performLogin", msgPerformLoginError, err)
	}
	if err := s.install(ctx, out.Token, claims); err != nil {
		return s.fail("performLogin", msgPerformLoginError, err)
	}
	metrics.SessionEvents.WithLabelValues("login").Inc()
	return nil
}

// PerformLogout drops the session: persisted storage, permissions, the
// outgoing authorization header and the in-memory token. In-memory state is
// cleared even when storage fails; the storage error is returned.
func (s *Store) PerformLogout(ctx context.Context) error {
	err := s.storage.Clear(ctx)
	if err != nil {
		s.log.Errorf("performLogout: clear storage: %v", err)
	}
	s.acl.Clear()
	s.api.ClearAuthorization()

	s.mu.Lock()
	s.token = ""
	s.decoded = nil
	s.loggedIn = false
	s.mu.Unlock()

	metrics.SessionEvents.WithLabelValues("logout").Inc()
	return err
}

// SetToken decodes raw and installs it.
func (s *Store) SetToken(ctx context.Context, raw string) error {
	claims, err := tokens.Decode(raw)
	if err != nil {
		return s.fail("setToken", msgSetTokenError, err)
	}
	if err := s.install(ctx, raw, claims); err != nil {
		return s.fail("setToken", msgSetTokenError, err)
	}
	return nil
}

// SetTokenFromStorage installs a token read from persisted storage. The
// persisted decoded claims are preferred over decoding raw. An expired token
// logs the session out instead.
func (s *Store) SetTokenFromStorage(ctx context.Context, raw string) error {
	claims := s.storedClaims(ctx)
	if claims == nil {
		var err error
		claims, err = tokens.Decode(raw)
		if err != nil {
			_ = s.PerformLogout(ctx)
			return s.fail("setTokenFromStorage", msgRestoreError, err)
		}
	}

	if claims.Expired(s.now().UTC()) {
		s.log.Infof(logTokenExpired)
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		return s.PerformLogout(ctx)
	}

	if err := s.install(ctx, raw, claims); err != nil {
		return s.fail("setTokenFromStorage", msgRestoreError, err)
	}
	return nil
}

func (s *Store) storedClaims(ctx context.Context) *tokens.Claims {
	var c tokens.Claims
	err := storage.GetJSON(ctx, s.storage, storage.KeyDecodedToken, &c)
	switch {
	case err == nil:
		return &c
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		s.log.Warnf("stored decoded token unreadable, decoding raw token: %v", err)
		return nil
	}
}

// RestoreFromStorage brings back a persisted session, if any.
func (s *Store) RestoreFromStorage(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && len(raw) == 0) {
		return nil
	}
	if err != nil {
		return s.fail("restoreFromStorage", msgRestoreError, err)
	}
	return s.SetTokenFromStorage(ctx, string(raw))
}

// CheckExpiry logs the session out when the installed token has expired.
// It reports whether that happened.
func (s *Store) CheckExpiry(ctx context.Context) bool {
	s.mu.RLock()
	expired := s.loggedIn && s.decoded.Expired(s.now().UTC())
	s.mu.RUnlock()
	if !expired {
		return false
	}
	s.log.Infof("session token expired, logging out")
	metrics.SessionEvents.WithLabelValues("expired").Inc()
	_ = s.PerformLogout(ctx)
	return true
}

// RefreshToken swaps the installed token for a fresh one. Any failure logs
// the session out.
func (s *Store) RefreshToken(ctx context.Context) error {
	s.notifier.StartWorking(msgRefreshToken)
	defer s.notifier.StopWorking()
	s.setRefreshing(true)
	defer s.setRefreshing(false)

	out, err := api.Decode[api.TokenResponse](s.api.RefreshToken(ctx))
	if err == nil {
		var claims *tokens.Claims
		claims, err = tokens.Decode(out.Token)
		if err == nil {
			err = s.install(ctx, out.Token, claims)
		}
	}
	if err != nil {
		_ = s.PerformLogout(ctx)
		return s.fail("refreshToken", msgRefreshTokenError, err)
	}
	metrics.SessionEvents.WithLabelValues("refresh").Inc()
	return nil
}

func (s *Store) setRefreshing(v bool) {
	s.mu.Lock()
	s.refreshing = v
	s.mu.Unlock()
}

// SetRedirect remembers path for after the next login, unless a redirect is
// already pending. Empty paths are ignored.
func (s *Store) SetRedirect(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	_, err := s.storage.Get(ctx, storage.KeyRedirect)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.log.Errorf("setRedirect: %v", err)
		return err
	}
	if err := s.storage.Set(ctx, storage.KeyRedirect, []byte(path)); err != nil {
		s.log.Errorf("setRedirect: %v", err)
		return err
	}
	return nil
}

// install persists the token, hands the permissions to the ACL, sets the
// outgoing authorization header, commits the state and consumes a pending
// redirect. Nothing is committed when persisting fails.
func (s *Store) install(ctx context.Context, raw string, claims *tokens.Claims) error {
	prev, err := s.storage.Get(ctx, storage.KeyToken)
	hadPrev := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read stored token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyToken, []byte(raw)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := storage.SetJSON(ctx, s.storage, storage.KeyDecodedToken, claims); err != nil {
		s.restoreToken(ctx, prev, hadPrev)
		return fmt.Errorf("persist decoded token: %w", err)
	}

	s.acl.Parse(claims.Permissions)
	s.api.SetAuthorization(raw)

	s.mu.Lock()
	s.token = raw
	s.decoded = claims
	s.loggedIn = true
	s.mu.Unlock()

	s.consumeRedirect(ctx)
	return nil
}

// restoreToken puts back the persisted token an aborted install replaced.
func (s *Store) restoreToken(ctx context.Context, prev []byte, hadPrev bool) {
	var err error
	if hadPrev {
		err = s.storage.Set(ctx, storage.KeyToken, prev)
	} else {
		err = s.storage.Remove(ctx, storage.KeyToken)
	}
	if err != nil {
		s.log.Errorf("roll back stored token: %v", err)
	}
}

func (s *Store) consumeRedirect(ctx context.Context) {
	b, err := s.storage.Get(ctx, storage.KeyRedirect)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Warnf("read pending redirect: %v", err)
		return
	}
	if err := s.storage.Remove(ctx, storage.KeyRedirect); err != nil {
		s.log.Warnf("remove pending redirect: %v", err)
	}
	if len(b) > 0 {
		s.nav.Navigate(string(b))
	}
}

// GetAccountDetails loads the current user's account.
func (s *Store) GetAccountDetails(ctx context.Context) error {
	s.notifier.StartWorking(msgGetAccountDetails)
	defer s.notifier.StopWorking()

	out, err := api.Decode[api.UserResponse](s.api.GetAccountDetails(ctx))
	if err != nil {
		return s.fail("getAccountDetails", msgGetAccountDetailsError, err)
	}
	s.setAccountDetails(out.User)
	return nil
}

// EditAccount sends the changed account fields and stores the returned user.
func (s *Store) EditAccount(ctx context.Context, updated map[string]any) error {
	s.notifier.StartWorking(msgEditAccount)
	out, err := api.Decode[api.UserResponse](s.api.EditAccount(ctx, updated))
	if err != nil {
		s.notifier.StopWorking()
		return s.fail("editAccount", msgEditAccountError, err)
	}
	s.setAccountDetails(out.User)
	s.notifier.StopWorking()
	s.notifier.ShowAlert(notify.Alert{Variant: notify.Success, Message: msgEditAccountSuccess})
	return nil
}

func (s *Store) setAccountDetails(user map[string]any) {
	s.mu.Lock()
	s.details = user
	s.mu.Unlock()
}

func (s *Store) ClearAccountDetails() {
	s.mu.Lock()
	s.details = nil
	s.mu.Unlock()
}

func (s *Store) LoginRedirectURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginRedirectURL
}

func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// DecodedToken returns the installed claims, or nil.
func (s *Store) DecodedToken() *tokens.Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decoded
}

// User returns the token's user claim; an empty map without a session.
func (s *Store) User() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.decoded == nil || s.decoded.User == nil {
		return map[string]any{}
	}
	return s.decoded.User
}

// AccountDetails returns the last account record, or nil.
func (s *Store) AccountDetails() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.details
}

func (s *Store) AccountMissions() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.details == nil {
		return nil
	}
	return s.details["missions"]
}

func (s *Store) AccountPermissions() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.details == nil {
		return nil
	}
	return s.details["permissions"]
}

func (s *Store) Refreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}

// PendingRedirect returns the persisted post-login redirect, if any.
func (s *Store) PendingRedirect(ctx context.Context) (string, bool) {
	b, err := s.storage.Get(ctx, storage.KeyRedirect)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// ACL exposes the permission helper fed by installed tokens.
func (s *Store) ACL() *acl.ACL { return s.acl }
