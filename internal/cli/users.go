package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Read and mutate the mirrored user directory",
	}

	cmd.AddCommand(newUsersListCommand(a))
	cmd.AddCommand(newUsersCreateCommand(a))
	cmd.AddCommand(newUsersUpdateCommand(a))
	cmd.AddCommand(newUsersDeleteCommand(a))
	return cmd
}

func newUsersListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users from the local mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.users.GetUsers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL")
			for _, r := range recs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Username, r.FullName(), r.Email)
			}
			return w.Flush()
		},
	}
}

func newUsersCreateCommand(a *app) *cobra.Command {
	var user models.User

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user, queueing the write while offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := getPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			user.Password = password

			if err := a.users.Create(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.Username, "username", "", "login name")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUsersUpdateCommand(a *app) *cobra.Command {
	var user models.User

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user, queueing the write while offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			user.ID = id

			if err := a.users.Update(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.Username, "username", "", "login name")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	return cmd
}

func newUsersDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user, queueing the write while offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			if err := a.users.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		},
	}
}
