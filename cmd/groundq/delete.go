package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Finish a running job by id",
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
				if err := q.Delete(cmd.Context(), job); err != nil {
					return describeStale(err, id, "deleted")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %d\n", id)
				return nil
			})
		},
	}
}
