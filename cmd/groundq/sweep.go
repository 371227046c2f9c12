package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	var queueName string
	var after int

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Return abandoned jobs to the queue",
		Long: `Return to PENDING every job that has been RUNNING for longer than the
recover window without finishing. Use a window comfortably longer than
the slowest legitimate job.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, queueName, func(q *queue.Queue, _ *storage.GormStore) error {
				window := time.Duration(after) * time.Minute
				if after <= 0 {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					window = cfg.RecoverAfter()
				}
				moved, err := q.Recover(cmd.Context(), window)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recovered %d jobs on %s\n", moved, q.Name())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&queueName, "queue", "q", "", "Queue to sweep (default from config)")
	cmd.Flags().IntVar(&after, "after", 0, "Recover window in minutes (default from config)")
	return cmd
}

func newPurgeCommand(ctx *commandContext) *cobra.Command {
	var queueName string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove finished rows past their retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, queueName, func(q *queue.Queue, _ *storage.GormStore) error {
				removed, err := q.Purge(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d rows on %s\n", removed, q.Name())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&queueName, "queue", "q", "", "Queue to sweep (default from config)")
	return cmd
}
