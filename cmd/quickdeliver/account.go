package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVarP(email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func (a *app) signUpCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.remote.SignUp(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", sess.Email)
			return nil
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (a *app) signInCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.remote.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", sess.Email)
			return nil
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (a *app) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.remote.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.remote.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil {
				return errors.New("not signed in")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (user %d)\n", sess.Email, sess.UserID)
			return nil
		},
	}
}
