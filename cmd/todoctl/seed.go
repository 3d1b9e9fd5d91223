package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type seedOptions struct {
	count   int
	workers int
	prefix  string
}

func newSeedCmd(opts *globalOptions) *cobra.Command {
	so := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated todos",
		Long: `Insert --count todos titled "<prefix> N" through the todo service,
using up to --workers concurrent creates. The schema must already exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := so.validate(); err != nil {
				return err
			}
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				return runSeed(ctx, cmd, s, so)
			})
		},
	}

	cmd.Flags().IntVar(&so.count, "count", 10, "number of todos to create")
	cmd.Flags().IntVar(&so.workers, "workers", 4, "maximum concurrent creates")
	cmd.Flags().StringVar(&so.prefix, "prefix", "Todo", "title prefix")
	return cmd
}

func (o *seedOptions) validate() error {
	var errs []error
	if o.count <= 0 {
		errs = append(errs, fmt.Errorf("--count must be positive, got %d", o.count))
	}
	if o.workers <= 0 {
		errs = append(errs, fmt.Errorf("--workers must be positive, got %d", o.workers))
	}
	return errors.Join(errs...)
}

func runSeed(ctx context.Context, cmd *cobra.Command, s *session, o *seedOptions) error {
	svc, err := s.Service()
	if err != nil {
		return err
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range o.count {
		title := fmt.Sprintf("%s %d", o.prefix, i+1)
		g.Go(func() error {
			if _, err := svc.CreateTodo(gctx, title, nil); err != nil {
				return fmt.Errorf("creating %q: %w", title, err)
			}
			created.Add(1)
			return nil
		})
	}

	err = g.Wait()
	s.logger.Info("seed finished",
		slog.Int64("created", created.Load()),
		slog.Int("requested", o.count),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d todos\n", created.Load())
	return nil
}
