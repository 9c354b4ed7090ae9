package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskmate/internal/validate"
)

func registerCmd(a *app) *cobra.Command {
	var c validate.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if !cmd.Flags().Changed("name") {
				if c.Name, err = a.prompt.Input("Name", "", validate.Name); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("email") {
				if c.Email, err = a.prompt.Input("Email", "", validate.Email); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("password") {
				if c.Password, err = a.prompt.Password("Password", validate.Password); err != nil {
					return err
				}
			}

			u, err := a.sess.Register(cmd.Context(), c)
			if err != nil {
				return failure(err, "")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account registered successfully")
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Name, "name", "", "display name")
	cmd.Flags().StringVar(&c.Email, "email", "", "email address")
	cmd.Flags().StringVar(&c.Password, "password", "", "password (prompted when omitted)")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var c validate.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if !cmd.Flags().Changed("email") {
				if c.Email, err = a.prompt.Input("Email", "", validate.Email); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("password") {
				if c.Password, err = a.prompt.Password("Password", validate.Required); err != nil {
					return err
				}
			}

			u, err := a.sess.Login(cmd.Context(), c)
			if err != nil {
				return failure(err, "Login failed. Please check your email and password.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Email, "email", "", "email address")
	cmd.Flags().StringVar(&c.Password, "password", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sess.Logout(); err != nil {
				return failure(err, "Failed to log out.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
