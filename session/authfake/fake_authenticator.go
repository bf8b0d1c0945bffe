package authfake

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-lms-client/api"
	"github.com/jrsteele09/go-lms-client/internal/utils"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/users"
)

var _ session.Authenticator = (*FakeAuthenticator)(nil)

// Demo accounts seeded into every fake.
const (
	DemoAdminEmail      = "admin@demo.com"
	DemoAdminPassword   = "admin123"
	DemoStudentEmail    = "student@demo.com"
	DemoStudentPassword = "student123"
)

type account struct {
	password string
	user     users.User
}

// FakeAuthenticator is an in-memory session.Authenticator seeded with the
// demo accounts. It backs tests and the CLI's demo mode; production wiring
// never consults it. Err fields, when set, override the corresponding call
// with a failure.
type FakeAuthenticator struct {
	LoginErr  error
	MeErr     error
	RegErr    error
	ForgotErr error

	LoginCalls    int
	MeCalls       int
	Registrations []users.Registration
	ResetEmails   []string

	accounts map[string]account
	current  *users.User
	lock     sync.Mutex
}

func NewFakeAuthenticator() *FakeAuthenticator {
	return &FakeAuthenticator{
		accounts: map[string]account{
			DemoAdminEmail: {
				password: DemoAdminPassword,
				user: users.User{
					ID:        1,
					Email:     DemoAdminEmail,
					FirstName: "Admin",
					LastName:  "User",
					Role:      users.RoleAdmin,
					CreatedAt: time.Now(),
				},
			},
			DemoStudentEmail: {
				password: DemoStudentPassword,
				user: users.User{
					ID:        2,
					Email:     DemoStudentEmail,
					FirstName: "John",
					LastName:  "Student",
					Role:      users.RoleStudent,
					CreatedAt: time.Now(),
				},
			},
		},
	}
}

// SetCurrent marks a user as the one Me resolves, simulating a persisted
// session on the backend side.
func (f *FakeAuthenticator) SetCurrent(user users.User) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.current = &user
}

func (f *FakeAuthenticator) Login(_ context.Context, email, password string) (*api.LoginResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.LoginCalls++
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return nil, &api.Error{StatusCode: 401, Message: "Invalid email or password"}
	}
	user := acc.user
	f.current = &user
	return &api.LoginResponse{
		Access:  "demo_token",
		Refresh: "demo_refresh_token",
		User:    user,
	}, nil
}

func (f *FakeAuthenticator) Me(_ context.Context) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.MeCalls++
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	if f.current == nil {
		return nil, &api.Error{StatusCode: 401}
	}
	return utils.Ptr(utils.Value(f.current)), nil
}

func (f *FakeAuthenticator) Register(_ context.Context, reg users.Registration) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.RegErr != nil {
		return f.RegErr
	}
	f.Registrations = append(f.Registrations, reg)
	return nil
}

func (f *FakeAuthenticator) ForgotPassword(_ context.Context, email string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.ForgotErr != nil {
		return f.ForgotErr
	}
	f.ResetEmails = append(f.ResetEmails, email)
	return nil
}
