package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nkiryanov/carectl/internal/models"
)

// Password from the flag, or the first line of stdin
func readPassword(cmd *cobra.Command, flag string, fromStdin bool) (string, error) {
	if !fromStdin {
		return flag, nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) loginCmd() *cobra.Command {
	var in models.LoginInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, in.Password, passwordStdin)
			if err != nil {
				return err
			}
			in.Password = password

			user, err := c.app.Client.Auth.Login(cmd.Context(), in)
			if err != nil {
				return err
			}

			c.app.printf("logged in as %s <%s>", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read password from stdin")

	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var in models.RegisterInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, in.Password, passwordStdin)
			if err != nil {
				return err
			}
			in.Password = password

			user, err := c.app.Client.Auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}

			c.app.printf("registered and logged in as %s <%s>", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read password from stdin")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().StringSliceVar(&in.Roles, "role", nil, "Account role, may be repeated")

	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Client.Auth.Logout(cmd.Context()); err != nil {
				return err
			}

			c.app.printf("logged out")
			return nil
		},
	}
}

func userTable(users ...models.User) func() table {
	return func() table {
		t := table{header: []string{"ID", "NAME", "EMAIL", "PHONE", "ROLES"}}
		for _, u := range users {
			t.add(u.ID, u.Name, u.Email, u.Phone, strings.Join(u.Roles, ","))
		}
		return t
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.Client.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}

			return c.app.print(user, userTable(user))
		},
	}
}

func (c *cli) changePasswordCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change password of the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Client.Auth.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}

			c.app.printf("password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}

func (c *cli) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password EMAIL",
		Short: "Ask for a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Tokens.ForgotPassword(cmd.Context(), args[0]); err != nil {
				return err
			}

			c.app.printf("reset instructions sent to %s", args[0])
			return nil
		},
	}
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with the emailed reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Tokens.ResetPassword(cmd.Context(), token, password); err != nil {
				return err
			}

			c.app.printf("password reset, log in with the new one")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Reset token")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
