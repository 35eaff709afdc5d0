package main

import (
	"fmt"

	"github.com/focusflow/focusflow-api/internal/client"
	"github.com/spf13/cobra"
)

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}

			url, _ := cmd.Flags().GetString("api")
			user, err := client.New(url).Signup(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Run `focusflow login` to sign in.\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringP("email", "e", "", "Email address")
	cmd.Flags().StringP("name", "n", "", "Display name")
	cmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}

			url, _ := cmd.Flags().GetString("api")
			resp, err := client.New(url).Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			dir, err := configDir()
			if err != nil {
				return err
			}
			if err := saveCredentials(dir, credentials{
				APIURL: url,
				Token:  resp.Token,
				UserID: resp.User.ID,
				Name:   resp.User.Name,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", resp.User.Name)
			return nil
		},
	}

	cmd.Flags().StringP("email", "e", "", "Email address")
	cmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := configDir()
			if err != nil {
				return err
			}
			c, _, err := newClient(cmd)
			if err == nil {
				if err := c.Logout(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", describeError(err))
				}
			}
			if err := removeCredentials(dir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			user, err := c.Session(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

func passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			if _, err := c.UpdatePassword(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "New password (prompted when omitted)")

	return cmd
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	return prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
}
