package main

import (
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/ramekin/ramekin-web/internal/config"
	"github.com/ramekin/ramekin-web/internal/di"
	"github.com/ramekin/ramekin-web/internal/di/providers"
	"github.com/ramekin/ramekin-web/internal/logger"
	"github.com/ramekin/ramekin-web/internal/ramekin"
	"github.com/ramekin/ramekin-web/internal/session"
)

// app is what every subcommand runs against. It is built lazily so --help
// never opens the database.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	session  *session.Session
	client   *ramekin.Client
	out      io.Writer
	injector *do.RootScope
}

type globalFlags struct {
	apiURL   string
	dataPath string
	logLevel string
}

// args converts the persistent flags into config flags.
func (g globalFlags) args() []string {
	var args []string
	if g.apiURL != "" {
		args = append(args, "--api-url="+g.apiURL)
	}
	if g.dataPath != "" {
		args = append(args, "--data-path="+g.dataPath)
	}
	if g.logLevel != "" {
		args = append(args, "--log-level="+g.logLevel)
	}
	return args
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	var a *app

	root := &cobra.Command{
		Use:           "ramekin",
		Short:         "Ramekin recipe manager client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			injector := di.NewContainer(flags.args())
			cfg, err := do.Invoke[*config.Config](injector)
			if err != nil {
				return err
			}
			*a = app{
				cfg:      cfg,
				log:      do.MustInvoke[*logger.Logger](injector),
				session:  do.MustInvoke[*session.Session](injector),
				client:   do.MustInvoke[*providers.ClientHandle](injector).Client,
				out:      cmd.OutOrStdout(),
				injector: injector,
			}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.injector == nil {
				return nil
			}
			return a.injector.Shutdown()
		},
	}
	a = &app{}

	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Ramekin backend URL (env RAMEKIN_API_URL)")
	root.PersistentFlags().StringVar(&flags.dataPath, "data-path", "", "Directory for local state (env DATA_PATH)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (env LOG_LEVEL)")

	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		captureCmd(a),
		jobCmd(a),
		weekCmd(a),
		diffCmd(a),
	)
	return root
}

// requireLogin fails when no credential is stored.
func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
