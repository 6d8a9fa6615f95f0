package main

import (
	"fmt"

	"github.com/dukerupert/grocer/internal/auth"
	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var password, confirm string
	var remember bool
	cmd := &cobra.Command{
		Use:   "register USERNAME",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			taken, err := a.creds.HasUser(username)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			if taken {
				return auth.ErrUsernameTaken
			}

			pw, err := a.secret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			cf, err := a.secret(cmd, confirm, "Confirm password: ")
			if err != nil {
				return err
			}
			if err := auth.ValidateRegistration(username, pw, cf, a.cfg.MinPasswordLength); err != nil {
				return err
			}

			ok, err := a.creds.Register(username, pw)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			if !ok {
				return auth.ErrUsernameTaken
			}
			if err := a.creds.SetRemember(remember); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", true, "Stay signed in for later commands")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	var remember bool
	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			pw, err := a.secret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			if err := auth.ValidateLogin(username, pw); err != nil {
				return err
			}

			ok, err := a.creds.Login(username, pw)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if !ok {
				return auth.ErrInvalidCredentials
			}
			if err := a.creds.SetRemember(remember); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s.\n", username)
			if !remember {
				fmt.Fprintln(out, "Session will not be kept; pass --remember to stay signed in.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Stay signed in for later commands")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.creds.Logout(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := a.creds.CurrentUser()
			if !ok {
				return errNotSignedIn
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.Username)
			return nil
		},
	}
}
