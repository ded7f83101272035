package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last sync time and mirror size",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store.GetSyncStatus(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if st.LastSync.IsZero() {
				fmt.Fprintln(out, "never synced")
			} else {
				fmt.Fprintf(out, "last sync: %s\n", st.LastSync.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "records:   %d\n", st.TotalRecords)
			if st.IsOnline {
				fmt.Fprintln(out, "mode:      online")
			} else {
				fmt.Fprintln(out, "mode:      offline")
			}
			return nil
		},
	}
}
