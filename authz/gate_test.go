package authz_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-lms-client/authz"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/authfake"
	"github.com/jrsteele09/go-lms-client/token/storefake"
	"github.com/jrsteele09/go-lms-client/users"
	"github.com/stretchr/testify/require"
)

func adminSnapshot() session.Snapshot {
	return session.Snapshot{
		State: session.StateAuthenticated,
		User:  &users.User{ID: 1, Email: "admin@demo.com", Role: users.RoleAdmin},
	}
}

func studentSnapshot() session.Snapshot {
	return session.Snapshot{
		State: session.StateAuthenticated,
		User:  &users.User{ID: 2, Email: "student@demo.com", Role: users.RoleStudent},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		required users.Role
		from     string
		want     authz.Verdict
	}{
		{
			name: "loading waits without redirect",
			snap: session.Snapshot{State: session.StateLoading},
			want: authz.Verdict{Action: authz.ActionWait},
		},
		{
			name:     "loading waits even with required role",
			snap:     session.Snapshot{State: session.StateLoading},
			required: users.RoleAdmin,
			want:     authz.Verdict{Action: authz.ActionWait},
		},
		{
			name: "anonymous redirects to login remembering location",
			snap: session.Snapshot{State: session.StateAnonymous},
			from: "/admin",
			want: authz.Verdict{Action: authz.ActionRedirect, Target: authz.RouteLogin, From: "/admin"},
		},
		{
			name:     "authenticated with no required role renders",
			snap:     studentSnapshot(),
			required: "",
			want:     authz.Verdict{Action: authz.ActionRender},
		},
		{
			name:     "matching role renders",
			snap:     adminSnapshot(),
			required: users.RoleAdmin,
			want:     authz.Verdict{Action: authz.ActionRender},
		},
		{
			name:     "student requesting admin content goes to student home",
			snap:     studentSnapshot(),
			required: users.RoleAdmin,
			want:     authz.Verdict{Action: authz.ActionRedirect, Target: authz.RouteStudentHome},
		},
		{
			name:     "admin requesting student content goes to admin home",
			snap:     adminSnapshot(),
			required: users.RoleStudent,
			want:     authz.Verdict{Action: authz.ActionRedirect, Target: authz.RouteAdminHome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, authz.Decide(tt.snap, tt.required, tt.from))
		})
	}
}

// TestDecide_Pure verifies that identical inputs always produce identical
// decisions.
func TestDecide_Pure(t *testing.T) {
	snap := studentSnapshot()
	first := authz.Decide(snap, users.RoleAdmin, "/admin")
	for i := 0; i < 100; i++ {
		require.Equal(t, first, authz.Decide(snap, users.RoleAdmin, "/admin"))
	}
}

func TestHomeRoute(t *testing.T) {
	require.Equal(t, authz.RouteAdminHome, authz.HomeRoute(users.RoleAdmin))
	require.Equal(t, authz.RouteStudentHome, authz.HomeRoute(users.RoleStudent))
}

// TestStudentLoginThenAdminGate walks the full path: a student logs in, then
// requests admin-only content and must land on the student home, not login.
func TestStudentLoginThenAdminGate(t *testing.T) {
	store := storefake.NewFakeStore()
	backend := authfake.NewFakeAuthenticator()
	manager, err := session.New(store, backend)
	require.NoError(t, err)

	manager.Bootstrap(context.Background())
	ok := manager.Login(context.Background(), authfake.DemoStudentEmail, authfake.DemoStudentPassword)
	require.True(t, ok)

	snap := manager.Snapshot()
	require.Equal(t, users.RoleStudent, snap.User.Role)

	verdict := authz.Decide(snap, users.RoleAdmin, "/admin")
	require.Equal(t, authz.ActionRedirect, verdict.Action)
	require.Equal(t, authz.RouteStudentHome, verdict.Target)
}
