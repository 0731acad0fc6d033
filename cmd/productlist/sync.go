package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay the offline request queue once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Controller.Drain(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "replayed %d of %d, failed %d, rejected %d, remaining %d\n",
				res.Replayed, res.Attempted, res.Failed, res.Rejected, res.Remaining)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %v\n", e)
			}
			return nil
		},
	}
}
