package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the remote record set into the local mirror",
		Long: `Run a sync pass: pull the remote record set page by page into the local
mirror and replay any queued offline mutations. With --watch the engine keeps
running, syncing on its interval and probing connectivity, until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if watch {
				fmt.Fprintln(cmd.OutOrStdout(), "watching; press Ctrl+C to stop")
				a.syncer.Run(ctx)
				return nil
			}

			a.syncer.StartSync(ctx)
			st := a.syncer.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "sync %s: %d records\n", st.State, st.TotalRecords)
			if st.Err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "last error: %v\n", st.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep syncing on the configured interval")
	return cmd
}
