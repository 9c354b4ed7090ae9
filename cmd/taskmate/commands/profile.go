package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskmate/internal/session"
)

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show, update or delete your account",
	}
	cmd.AddCommand(profileShowCmd(a), profileUpdateCmd(a), profileDeleteCmd(a))
	return cmd
}

func profileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := a.sess.User()
			if !ok {
				return failure(session.ErrNotLoggedIn, "")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:  %s\n", u.Name)
			fmt.Fprintf(out, "Email: %s\n", u.Email)
			fmt.Fprintf(out, "Theme: %s\n", u.Theme)
			return nil
		},
	}
}

func profileUpdateCmd(a *app) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := a.sess.User()
			if !ok {
				return failure(session.ErrNotLoggedIn, "")
			}
			if !cmd.Flags().Changed("name") {
				name = u.Name
			}
			if !cmd.Flags().Changed("email") {
				email = u.Email
			}
			if _, err := a.sess.UpdateProfile(cmd.Context(), name, email); err != nil {
				return failure(err, "Failed to update profile.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated successfully.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	return cmd
}

func profileDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.sess.User(); !ok {
				return failure(session.ErrNotLoggedIn, "")
			}
			if !yes {
				ok, err := a.prompt.Confirm("Are you sure you want to delete your account?")
				if err != nil || !ok {
					return err
				}
			}
			if err := a.sess.DeleteAccount(cmd.Context()); err != nil {
				return failure(err, "Failed to delete account.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Your account has been deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
