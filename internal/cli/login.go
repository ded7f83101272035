package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate against cached credentials or the remote endpoint",
		Long: `Authenticate a user. Locally cached credentials are checked first, so
login keeps working while offline; only when the cache cannot vouch for the
user is the remote endpoint consulted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				username string
				err      error
			)
			if len(args) == 1 {
				username = args[0]
			} else {
				reader := bufio.NewReader(os.Stdin)
				username, err = getSimpleText(reader, "Username", cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			password, err := getPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			user, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}
