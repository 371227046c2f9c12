package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

func newReleaseCommand(ctx *commandContext) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "release ID",
		Short: "Return a running job to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withQueue(cmd, "", func(q *queue.Queue, _ *storage.GormStore) error {
				// Release persists the payload, so an undecodable row cannot
				// take this path; delete or bury it instead.
				job, err := q.Peek(cmd.Context(), id)
				if err != nil {
					var payloadErr *core.PayloadError
					if errors.As(err, &payloadErr) {
						return fmt.Errorf("job %d payload is undecodable; delete or bury it instead", id)
					}
					if errors.Is(err, core.ErrNotFound) {
						return fmt.Errorf("job %d not found", id)
					}
					return err
				}

				var opts []core.Option
				if delay > 0 {
					opts = append(opts, core.Delay(delay))
				}
				if err := q.Release(cmd.Context(), job, opts...); err != nil {
					return describeStale(err, id, "released")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Released job %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "Schedule the retry this far in the future")
	return cmd
}
