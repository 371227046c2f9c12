package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

func newPushCommand(ctx *commandContext) *cobra.Command {
	var delay time.Duration
	var at string

	cmd := &cobra.Command{
		Use:   "push QUEUE CLASS [JSON]",
		Short: "Enqueue a job",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []core.Option
			switch {
			case delay > 0 && at != "":
				return errors.New("specify only one of --delay or --at")
			case delay > 0:
				opts = append(opts, core.Delay(delay))
			case at != "":
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				opts = append(opts, core.At(t))
			}

			job := &core.Job{Class: args[1]}
			if len(args) == 3 {
				if !json.Valid([]byte(args[2])) {
					return errors.New("job content must be valid JSON")
				}
				job.Content = json.RawMessage(args[2])
			}

			return ctx.withQueue(cmd, args[0], func(q *queue.Queue, _ *storage.GormStore) error {
				if err := q.Push(cmd.Context(), job, opts...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed job %d to %s (%s)\n", job.ID, q.Name(), job.Class)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "Make the job claimable only after this duration, e.g. 5m")
	cmd.Flags().StringVar(&at, "at", "", "Make the job claimable at this RFC3339 time")
	return cmd
}
