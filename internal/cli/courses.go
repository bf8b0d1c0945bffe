package cli

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-lms-client/api"
	"github.com/jrsteele09/go-lms-client/authz"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/users"
)

var (
	courseSearch      string
	courseTitle       string
	courseDescription string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Browse and manage courses",
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		if err := requireSession(a.manager.Snapshot(), "", authz.RouteStudentHome); err != nil {
			return err
		}

		courses, err := a.client.Courses(ctx)
		if err != nil {
			return err
		}
		courses = filterCourses(courses, courseSearch)
		if len(courses) == 0 {
			fmt.Println("No courses found")
			return nil
		}
		for _, course := range courses {
			fmt.Printf("%4d  %-40s %3d PDFs\n", course.ID, course.Title, course.PDFCount)
		}
		return nil
	},
}

var coursesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a course (admin only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		if err := requireSession(a.manager.Snapshot(), users.RoleAdmin, authz.RouteAdminHome); err != nil {
			return err
		}

		course, err := a.client.CreateCourse(ctx, courseTitle, courseDescription)
		if err != nil {
			return err
		}
		fmt.Printf("Created course %d: %s\n", course.ID, course.Title)
		return nil
	},
}

func init() {
	coursesListCmd.Flags().StringVarP(&courseSearch, "search", "s", "", "Filter by title or description substring")

	coursesCreateCmd.Flags().StringVarP(&courseTitle, "title", "t", "", "Course title")
	coursesCreateCmd.Flags().StringVarP(&courseDescription, "description", "d", "", "Course description")
	_ = coursesCreateCmd.MarkFlagRequired("title")

	coursesCmd.AddCommand(coursesListCmd, coursesCreateCmd)
	rootCmd.AddCommand(coursesCmd)
}

// requireSession maps a gate verdict onto CLI behavior: redirects become
// errors naming the route the user belongs on.
func requireSession(snap session.Snapshot, required users.Role, from string) error {
	verdict := authz.Decide(snap, required, from)
	switch verdict.Action {
	case authz.ActionRender:
		return nil
	case authz.ActionRedirect:
		if verdict.Target == authz.RouteLogin {
			return errors.New("not logged in, run `lms login` first")
		}
		return errors.Errorf("not allowed here, your home is %s", verdict.Target)
	default:
		return errors.New("session still resolving, try again")
	}
}

// filterCourses returns the courses whose title or description contains the
// search term, case-insensitively. An empty term keeps everything.
func filterCourses(courses []api.Course, search string) []api.Course {
	if search == "" {
		return courses
	}
	term := strings.ToLower(search)
	filtered := make([]api.Course, 0, len(courses))
	for _, course := range courses {
		if strings.Contains(strings.ToLower(course.Title), term) ||
			strings.Contains(strings.ToLower(course.Description), term) {
			filtered = append(filtered, course)
		}
	}
	return filtered
}
