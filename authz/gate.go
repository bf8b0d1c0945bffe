package authz

import (
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/users"
)

// Route path constants
// All navigation targets are defined here to ensure consistency and prevent typos
const (
	RouteLogin       = "/login"
	RouteAdminHome   = "/admin"
	RouteStudentHome = "/dashboard"
)

// Action is the terminal outcome of a gate decision. There are no retries at
// this layer; the decision is recomputed on every state change.
type Action int

const (
	// ActionWait renders a placeholder while the session is still resolving.
	ActionWait Action = iota
	// ActionRender lets the protected content through.
	ActionRender
	// ActionRedirect sends the user to Target.
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Verdict is a gate decision. Target is set for redirects; From remembers
// the originally requested location when redirecting to login, so it can be
// returned to after authentication.
type Verdict struct {
	Action Action
	Target string
	From   string
}

// HomeRoute returns a role's own dashboard route.
func HomeRoute(role users.Role) string {
	if role == users.RoleAdmin {
		return RouteAdminHome
	}
	return RouteStudentHome
}

// Decide is a pure projection of the session state and a required role onto
// a navigation decision. An empty required role protects against anonymous
// access only. A role mismatch redirects to the user's own home, never to
// login.
func Decide(snap session.Snapshot, required users.Role, from string) Verdict {
	switch {
	case snap.State == session.StateLoading:
		return Verdict{Action: ActionWait}
	case !snap.IsAuthenticated():
		return Verdict{Action: ActionRedirect, Target: RouteLogin, From: from}
	case required == "" || snap.User.Role == required:
		return Verdict{Action: ActionRender}
	default:
		return Verdict{Action: ActionRedirect, Target: HomeRoute(snap.User.Role)}
	}
}
