package users_test

import (
	"testing"

	"github.com/jrsteele09/go-lms-client/users"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "student@demo.com", wantErr: false},
		{name: "valid with subdomain", email: "a.b@mail.example.co.uk", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "whitespace only", email: "   ", wantErr: true},
		{name: "missing at", email: "student.demo.com", wantErr: true},
		{name: "missing local part", email: "@demo.com", wantErr: true},
		{name: "missing domain", email: "student@", wantErr: true},
		{name: "domain without dot", email: "student@demo", wantErr: true},
		{name: "domain ends with dot", email: "student@demo.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		expectErr string
	}{
		{name: "valid", password: "Password1"},
		{name: "too short", password: "Pw1", expectErr: "at least 8 characters"},
		{name: "no uppercase", password: "password1", expectErr: "uppercase"},
		{name: "no lowercase", password: "PASSWORD1", expectErr: "lowercase"},
		{name: "no number", password: "Password", expectErr: "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.expectErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := users.Registration{
		Email:     "new@example.com",
		Password:  "Password1",
		FirstName: "New",
		LastName:  "User",
		Role:      users.RoleStudent,
	}

	require.NoError(t, valid.Validate())

	missingFirst := valid
	missingFirst.FirstName = " "
	require.Error(t, missingFirst.Validate())

	missingLast := valid
	missingLast.LastName = ""
	require.Error(t, missingLast.Validate())

	badRole := valid
	badRole.Role = "teacher"
	err := badRole.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "role")

	badEmail := valid
	badEmail.Email = "not-an-email"
	require.Error(t, badEmail.Validate())
}
