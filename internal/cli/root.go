package cli

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-lms-client/api"
	"github.com/jrsteele09/go-lms-client/internal/config"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/authfake"
	"github.com/jrsteele09/go-lms-client/token"
	"github.com/jrsteele09/go-lms-client/transport"
)

var (
	demoMode bool
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "lms",
	Short: "Command-line client for the learning platform",
	Long: `lms is a command-line client for the learning platform backend.

Sessions persist between invocations: log in once and subsequent commands
reuse the stored tokens, refreshing them transparently when they expire.

Environment Variables:
  LMS_API_URL     Backend API URL (default: http://localhost:8000/api)
  LMS_TOKEN_FILE  Token storage path (default: ~/.lms/tokens.json)
  ENV             PROD hardens token transmission attributes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		displayAppname(config.New().GetAppName())
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "Use the built-in demo accounts instead of the backend")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// consoleNotifier is the CLI's toast bar: operation outcomes print to the
// terminal as they happen.
type consoleNotifier struct{}

func (consoleNotifier) Success(message string) { fmt.Fprintln(os.Stdout, message) }
func (consoleNotifier) Error(message string)   { fmt.Fprintln(os.Stderr, message) }

// app is one fully wired client: config, token store, request pipeline,
// backend client, and session manager, assembled in dependency order.
type app struct {
	cfg     config.Config
	client  *api.Client
	manager *session.Manager
}

// newApp wires the application. The session-expired hook closes over the
// manager variable because the pipeline must be built before the manager
// that consumes it.
func newApp() (*app, error) {
	logger := newLogger()
	cfg := config.New()

	store := token.NewFileStore(cfg.GetTokenFile(),
		token.WithTransmissionAttributes(cfg.IsProduction(), cfg.IsProduction()),
		token.WithLogger(logger),
	)

	var manager *session.Manager
	pipeline, err := transport.New(cfg.GetBaseURL(), store,
		api.NewRefreshFunc(cfg.GetBaseURL(), nil),
		transport.WithOnSessionExpired(func() {
			if manager != nil {
				manager.Expire()
			}
		}),
		transport.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.GetBaseURL(), pipeline.Client(), api.WithClientLogger(logger))
	if err != nil {
		return nil, err
	}

	var backend session.Authenticator = client
	if demoMode {
		backend = authfake.NewFakeAuthenticator()
	}

	manager, err = session.New(store, backend,
		session.WithNotifier(consoleNotifier{}),
		session.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, client: client, manager: manager}, nil
}
