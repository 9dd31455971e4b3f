package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// auth.go handles register, login, logout and whoami.

func newAuthCmd(a *app) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Authenticate with the elibrary API server. Supports register, login, logout and whoami.`,
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlagOrPrompt(cmd)
			if err != nil {
				return err
			}

			if err := a.session.Register(cmd.Context(), username, email, password); err != nil {
				return a.fail("registration failed", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Registration successful! Logged in as %s\n", a.session.User().Username)
			return nil
		},
	}
	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login to your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlagOrPrompt(cmd)
			if err != nil {
				return err
			}

			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return a.fail("login failed", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Successfully logged in as %s\n", a.session.User().Username)
			return nil
		},
	}
	loginCmd.Flags().StringP("email", "e", "", "Email address of the account")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	loginCmd.MarkFlagRequired("email")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Successfully logged out.")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			u := a.session.User()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", u.ID)
			fmt.Fprintf(out, "Username: %s\n", u.Username)
			fmt.Fprintf(out, "Email: %s\n", u.Email)
			if !u.CreatedAt.IsZero() {
				fmt.Fprintf(out, "Member since: %s\n", u.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
	return authCmd
}

func passwordFlagOrPrompt(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	return readSecret(cmd, "Password: ")
}
