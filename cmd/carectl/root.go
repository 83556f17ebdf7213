package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkiryanov/carectl/internal/validate"
)

type cli struct {
	config *Config
	stdout io.Writer
	stderr io.Writer

	// Built before any subcommand runs
	app *App
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "carectl",
		Short:         "Command line client of the home care cooperative backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := NewApp(cmd.Context(), c.config, c.stdout, c.stderr)
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
	}
	c.config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.changePasswordCmd(),
		c.forgotPasswordCmd(),
		c.resetPasswordCmd(),
		c.schedulesCmd(),
		c.appointmentsCmd(),
		c.patientsCmd(),
		c.professionalsCmd(),
		c.usersCmd(),
		c.dashboardCmd(),
		c.reportsCmd(),
	)

	return root
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func today() string {
	return time.Now().Format(validate.DateLayout)
}
