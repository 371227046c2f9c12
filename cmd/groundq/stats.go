package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

var statsOrder = []core.Status{
	core.StatusPending,
	core.StatusRunning,
	core.StatusDeleted,
	core.StatusBuried,
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var queueName string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-status job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, queueName, func(q *queue.Queue, _ *storage.GormStore) error {
				stats, err := q.Stats(cmd.Context())
				if err != nil {
					return err
				}

				var total int64
				rows := make([][]string, 0, len(statsOrder)+1)
				for _, status := range statsOrder {
					count := stats[status]
					total += count
					rows = append(rows, []string{status.String(), strconv.FormatInt(count, 10)})
				}
				rows = append(rows, []string{"total", strconv.FormatInt(total, 10)})

				out := cmd.OutOrStdout()
				if isTerminal(out) {
					fmt.Fprintln(out, renderTable(
						[]string{"Status", "Count"},
						rows,
						[]columnAlignment{alignLeft, alignRight},
					))
					return nil
				}
				for _, row := range rows {
					fmt.Fprintf(out, "%s %s\n", row[0], row[1])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&queueName, "queue", "q", "", "Queue to count (default from config)")
	return cmd
}
