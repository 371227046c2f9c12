package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/core"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/storage"
)

func newPeekCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "peek ID",
		Short: "Show a job record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withQueue(cmd, "", func(_ *queue.Queue, store *storage.GormStore) error {
				rec, err := store.Find(cmd.Context(), id)
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("job %d not found", id)
				}
				writeRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func writeRecord(out io.Writer, rec *core.Record) {
	class := "(undecodable)"
	content := rec.Data
	if job, err := core.DecodeJob(rec); err == nil {
		class = job.Class
		content = string(job.Content)
	}

	rows := [][]string{
		{"ID", strconv.FormatInt(rec.ID, 10)},
		{"Queue", rec.Queue},
		{"Status", rec.Status.String()},
		{"Class", class},
		{"Created", rec.Created.Format(time.RFC3339)},
		{"Scheduled", rec.Scheduled.Format(time.RFC3339)},
		{"Executed", formatTimePtr(rec.Executed)},
		{"Finished", formatTimePtr(rec.Finished)},
		{"Message", stringOrDash(rec.Message)},
		{"Content", content},
	}

	if isTerminal(out) {
		fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
	} else {
		for _, row := range rows {
			fmt.Fprintf(out, "%s: %s\n", strings.ToLower(row[0]), row[1])
		}
	}

	if rec.Trace != nil && *rec.Trace != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, *rec.Trace)
	}
}
