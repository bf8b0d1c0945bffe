package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-lms-client/api"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/authfake"
	"github.com/jrsteele09/go-lms-client/token"
	"github.com/jrsteele09/go-lms-client/token/storefake"
	"github.com/jrsteele09/go-lms-client/users"
)

func tokenPair(access, refresh string) token.Pair {
	return token.Pair{AccessToken: access, RefreshToken: refresh}
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) { n.successes = append(n.successes, message) }
func (n *recordingNotifier) Error(message string)   { n.errors = append(n.errors, message) }

type managerFixture struct {
	store    *storefake.FakeStore
	backend  *authfake.FakeAuthenticator
	notifier *recordingNotifier
	manager  *session.Manager
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	f := &managerFixture{
		store:    storefake.NewFakeStore(),
		backend:  authfake.NewFakeAuthenticator(),
		notifier: &recordingNotifier{},
	}
	manager, err := session.New(f.store, f.backend, session.WithNotifier(f.notifier))
	require.NoError(t, err)
	f.manager = manager
	return f
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := session.New(nil, authfake.NewFakeAuthenticator())
	require.Error(t, err)
	_, err = session.New(storefake.NewFakeStore(), nil)
	require.Error(t, err)
}

func TestInitialStateIsLoading(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, session.StateLoading, f.manager.Snapshot().State)
}

func TestBootstrap_NoTokenResolvesAnonymous(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Bootstrap(context.Background())

	snap := f.manager.Snapshot()
	require.Equal(t, session.StateAnonymous, snap.State)
	require.Nil(t, snap.User)
	require.Zero(t, f.backend.MeCalls)
}

func TestBootstrap_ValidTokenResolvesAuthenticated(t *testing.T) {
	f := newManagerFixture(t)
	f.store.Set(tokenPair("persisted_access", "persisted_refresh"))
	f.backend.SetCurrent(users.User{ID: 2, Email: authfake.DemoStudentEmail, Role: users.RoleStudent})

	f.manager.Bootstrap(context.Background())

	snap := f.manager.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.True(t, snap.IsStudent())
	require.Equal(t, authfake.DemoStudentEmail, snap.User.Email)
	require.Zero(t, f.backend.LoginCalls, "bootstrap must not re-authenticate")
}

func TestBootstrap_UnusableTokenClearsStore(t *testing.T) {
	f := newManagerFixture(t)
	f.store.Set(tokenPair("stale_access", "stale_refresh"))
	f.backend.MeErr = &api.Error{StatusCode: 401}

	f.manager.Bootstrap(context.Background())

	require.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	_, ok := f.store.Get()
	require.False(t, ok)
}

func TestBootstrap_RunsOnce(t *testing.T) {
	f := newManagerFixture(t)
	f.store.Set(tokenPair("access", "refresh"))
	f.backend.SetCurrent(users.User{ID: 1, Role: users.RoleAdmin})

	f.manager.Bootstrap(context.Background())
	f.manager.Bootstrap(context.Background())

	require.Equal(t, 1, f.backend.MeCalls)
}

func TestLogin_SuccessPersistsTokensAndNotifies(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Bootstrap(context.Background())

	ok := f.manager.Login(context.Background(), authfake.DemoAdminEmail, authfake.DemoAdminPassword)
	require.True(t, ok)

	snap := f.manager.Snapshot()
	require.True(t, snap.IsAdmin())

	pair, present := f.store.Get()
	require.True(t, present)
	require.Equal(t, "demo_token", pair.AccessToken)
	require.Equal(t, "demo_refresh_token", pair.RefreshToken)
	require.Equal(t, []string{"Login successful!"}, f.notifier.successes)
}

func TestLogin_FailureLeavesSessionUntouched(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Bootstrap(context.Background())

	ok := f.manager.Login(context.Background(), authfake.DemoAdminEmail, "wrong")
	require.False(t, ok)

	require.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	_, present := f.store.Get()
	require.False(t, present)
	require.Equal(t, []string{"Invalid email or password"}, f.notifier.errors)
}

func TestLogin_BackendMessagePreferred(t *testing.T) {
	f := newManagerFixture(t)
	f.backend.LoginErr = &api.Error{StatusCode: 401, Message: "Account locked after too many attempts"}

	require.False(t, f.manager.Login(context.Background(), authfake.DemoAdminEmail, authfake.DemoAdminPassword))
	require.Equal(t, []string{"Account locked after too many attempts"}, f.notifier.errors)
}

func TestLogin_GenericFallbackWhenNoMessage(t *testing.T) {
	f := newManagerFixture(t)
	f.backend.LoginErr = &api.Error{StatusCode: 500}

	require.False(t, f.manager.Login(context.Background(), authfake.DemoAdminEmail, authfake.DemoAdminPassword))
	require.Equal(t, []string{"Invalid email or password"}, f.notifier.errors)
}

func TestLoginThenLogout(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Bootstrap(context.Background())

	require.True(t, f.manager.Login(context.Background(), authfake.DemoStudentEmail, authfake.DemoStudentPassword))
	f.manager.Logout()

	snap := f.manager.Snapshot()
	require.Equal(t, session.StateAnonymous, snap.State)
	require.Nil(t, snap.User)
	_, present := f.store.Get()
	require.False(t, present)
	require.Contains(t, f.notifier.successes, "Logged out successfully")
}

func TestRegister_ValidationShortCircuits(t *testing.T) {
	f := newManagerFixture(t)

	ok := f.manager.Register(context.Background(), users.Registration{
		Email:     "not-an-email",
		Password:  "Password1",
		FirstName: "New",
		LastName:  "User",
	})
	require.False(t, ok)
	require.Empty(t, f.backend.Registrations, "invalid input must not reach the backend")
	require.Len(t, f.notifier.errors, 1)
}

func TestRegister_Success(t *testing.T) {
	f := newManagerFixture(t)
	reg := users.Registration{
		Email:     "new@demo.com",
		Password:  "Password1",
		FirstName: "New",
		LastName:  "User",
		Role:      users.RoleStudent,
	}

	require.True(t, f.manager.Register(context.Background(), reg))
	require.Equal(t, []users.Registration{reg}, f.backend.Registrations)
	require.Equal(t, []string{"Registration successful! Please login."}, f.notifier.successes)
	require.Equal(t, session.StateLoading, f.manager.Snapshot().State, "registration must not authenticate")
}

func TestForgotPassword_InvalidEmailShortCircuits(t *testing.T) {
	f := newManagerFixture(t)

	require.False(t, f.manager.ForgotPassword(context.Background(), "nope"))
	require.Empty(t, f.backend.ResetEmails)
}

func TestForgotPassword_Success(t *testing.T) {
	f := newManagerFixture(t)

	require.True(t, f.manager.ForgotPassword(context.Background(), "student@demo.com"))
	require.Equal(t, []string{"student@demo.com"}, f.backend.ResetEmails)
	require.Equal(t, []string{"Password reset email sent!"}, f.notifier.successes)
}

func TestSubscribe_BroadcastAndUnsubscribe(t *testing.T) {
	f := newManagerFixture(t)

	var seen []session.State
	unsubscribe := f.manager.Subscribe(func(snap session.Snapshot) {
		seen = append(seen, snap.State)
	})

	f.manager.Bootstrap(context.Background())
	require.Equal(t, []session.State{session.StateAnonymous}, seen)

	f.manager.Login(context.Background(), authfake.DemoAdminEmail, authfake.DemoAdminPassword)
	require.Equal(t, []session.State{session.StateAnonymous, session.StateAuthenticated}, seen)

	unsubscribe()
	f.manager.Logout()
	require.Len(t, seen, 2, "unsubscribed observers must not be invoked")
}

func TestExpire_Idempotent(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Bootstrap(context.Background())
	require.True(t, f.manager.Login(context.Background(), authfake.DemoStudentEmail, authfake.DemoStudentPassword))

	f.manager.Expire()
	f.manager.Expire()

	require.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	require.Equal(t, []string{"Session expired. Please log in again."}, f.notifier.errors)
}

func TestFromContext_WithinScope(t *testing.T) {
	f := newManagerFixture(t)
	ctx := session.NewContext(context.Background(), f.manager)
	require.Same(t, f.manager, session.FromContext(ctx))
}

func TestFromContext_PanicsOutsideScope(t *testing.T) {
	require.Panics(t, func() {
		session.FromContext(context.Background())
	})
}
