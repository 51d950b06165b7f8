package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session on this device",
		Long:  "Sign in with email and password. Without --password the password is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errs.Invalid("password", "is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			id, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if a.flags.json {
				return a.printJSON(id)
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", id.Name())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and cached profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, ok, err := a.sessions.Load(ctx); err != nil {
				return err
			} else if !ok {
				return &errs.AuthError{Reason: "not signed in"}
			}
			id, ok := a.ids.Cached()
			if refresh || !ok {
				var err error
				if id, err = a.ids.Refresh(ctx); err != nil {
					return err
				}
			}
			if a.flags.json {
				return a.printJSON(id)
			}
			a.renderer(ctx).Identity(id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the server")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}
	var username, email string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Change username or email",
		Long:  "Change username or email. A flag left out keeps the current value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cur, _ := a.ids.Cached()
			if username == "" {
				username = cur.Username
			}
			if email == "" {
				email = cur.Email
			}
			id, err := a.auth.UpdateProfile(ctx, username, email)
			if err != nil {
				return err
			}
			if a.flags.json {
				return a.printJSON(id)
			}
			a.renderer(ctx).Identity(id)
			return nil
		},
	}
	edit.Flags().StringVarP(&username, "username", "u", "", "new username")
	edit.Flags().StringVarP(&email, "email", "e", "", "new email")
	cmd.AddCommand(edit)
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(session.ThemeLight), string(session.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				t, err := a.sessions.Theme(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, t)
				return nil
			}
			t, err := session.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := a.sessions.SetTheme(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Theme set to %s.\n", t)
			return nil
		},
	}
}
