package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

func newBuryCommand(ctx *commandContext) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "bury ID",
		Short: "Park a running job as permanently failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withQueue(cmd, "", func(q *queue.Queue, _ *storage.GormStore) error {
				job, err := jobByID(cmd.Context(), q, id)
				if err != nil {
					return err
				}
				if err := q.Bury(cmd.Context(), job, core.Failure(message, "")); err != nil {
					return describeStale(err, id, "buried")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Buried job %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "buried by operator", "Diagnostic recorded on the row")
	return cmd
}
