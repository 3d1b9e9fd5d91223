package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errPurgeNotConfirmed = errors.New("refusing to delete every todo without --force")

func newPurgeCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return errPurgeNotConfirmed
			}
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				svc, err := s.Service()
				if err != nil {
					return err
				}
				n, err := svc.DeleteAllTodos(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d todos\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deleting every todo")
	return cmd
}
