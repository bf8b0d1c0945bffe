package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-lms-client/authz"
	"github.com/jrsteele09/go-lms-client/users"
)

var (
	loginPassword string
	registration  users.Registration
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		displayAppname(a.cfg.GetAppName())
		a.manager.Bootstrap(ctx)

		if !a.manager.Login(ctx, args[0], loginPassword) {
			return errors.New("login failed")
		}
		snap := a.manager.Snapshot()
		fmt.Printf("Welcome, %s. Your home is %s\n", snap.User.FullName(), authz.HomeRoute(snap.User.Role))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Destroy the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		a.manager.Logout()
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		registration.Email = args[0]
		if !a.manager.Register(ctx, registration) {
			return errors.New("registration failed")
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)

		snap := a.manager.Snapshot()
		if !snap.IsAuthenticated() {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("%s <%s> (%s)\n", snap.User.FullName(), snap.User.Email, snap.User.Role)
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.manager.ForgotPassword(ctx, args[0]) {
			return errors.New("password reset request failed")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVarP(&registration.Password, "password", "p", "", "Account password")
	registerCmd.Flags().StringVar(&registration.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registration.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar((*string)(&registration.Role), "role", string(users.RoleStudent), "Account role (admin or student)")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("first-name")
	_ = registerCmd.MarkFlagRequired("last-name")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, forgotPasswordCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
