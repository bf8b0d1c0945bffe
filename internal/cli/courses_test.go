package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-lms-client/api"
	"github.com/jrsteele09/go-lms-client/authz"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/users"
)

func TestFilterCourses(t *testing.T) {
	courses := []api.Course{
		{ID: 1, Title: "Distributed Systems", Description: "Consensus and replication"},
		{ID: 2, Title: "Databases", Description: "Storage engines"},
		{ID: 3, Title: "Networking", Description: "From sockets to systems"},
	}

	tests := []struct {
		name   string
		search string
		want   []int64
	}{
		{name: "empty search keeps everything", search: "", want: []int64{1, 2, 3}},
		{name: "title match is case insensitive", search: "DATA", want: []int64{2}},
		{name: "description also matches", search: "systems", want: []int64{1, 3}},
		{name: "no match", search: "quantum", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, course := range filterCourses(courses, tt.search) {
				got = append(got, course.ID)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRequireSession(t *testing.T) {
	student := session.Snapshot{
		State: session.StateAuthenticated,
		User:  &users.User{ID: 2, Role: users.RoleStudent},
	}

	require.NoError(t, requireSession(student, "", authz.RouteStudentHome))
	require.NoError(t, requireSession(student, users.RoleStudent, authz.RouteStudentHome))

	err := requireSession(session.Snapshot{State: session.StateAnonymous}, "", authz.RouteStudentHome)
	require.ErrorContains(t, err, "not logged in")

	err = requireSession(student, users.RoleAdmin, authz.RouteAdminHome)
	require.ErrorContains(t, err, authz.RouteStudentHome)
}
