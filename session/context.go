package session

import "context"

type ctxKey struct{}

// NewContext returns a context carrying the manager. Exactly one manager
// exists per running application; every consumer reads it back through
// FromContext.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext returns the manager attached by NewContext. It panics when no
// manager is present: consuming session state outside the provided scope is
// a programming error, not a runtime condition.
func FromContext(ctx context.Context) *Manager {
	m, ok := ctx.Value(ctxKey{}).(*Manager)
	if !ok {
		panic("session.FromContext must be called within a session.NewContext scope")
	}
	return m
}
