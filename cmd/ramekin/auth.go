package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/ramekin"
)

var errNotLoggedIn = errors.Unauthorized("not logged in, run `ramekin login` first")

func loginCmd(a *app) *cobra.Command {
	var creds ramekin.Credentials
	var passwordStdin, signup bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				creds.Password = strings.TrimRight(line, "\r\n")
			}

			authenticate := a.client.Login
			if signup {
				authenticate = a.client.Signup
			}
			res, err := authenticate(cmd.Context(), creds)
			if err != nil {
				return errors.Wrap(err, errors.CodeOf(err), ramekin.ErrorMessage(err, "Login failed"))
			}
			if err := a.session.Set(cmd.Context(), res.Token); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Logged in to %s as %s\n", a.cfg.Ramekin.APIURL, creds.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&signup, "signup", false, "Create the account first")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the backend and whether the stored token is accepted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "Backend: %s\n", a.cfg.Ramekin.APIURL)
			if err := a.requireLogin(); err != nil {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}

			page, err := a.client.ListRecipes(cmd.Context(), ramekin.ListParams{Limit: 1})
			if ramekin.IsUnauthorized(err) {
				fmt.Fprintln(a.out, "Stored token was rejected, log in again")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in (%d recipes)\n", page.Pagination.Total)
			return nil
		},
	}
}
